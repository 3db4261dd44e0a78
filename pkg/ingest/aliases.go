package ingest

import "github.com/ecardhq/contactd/pkg/models"

// fieldAliases maps each canonical field to the column headings it may
// appear under in uploaded files. Matching is case-insensitive and
// accent-insensitive; the English and Spanish aliases reflect the data the
// system was originally fed.
var fieldAliases = map[models.Field][]string{
	// Core
	models.FieldFirstName: {"first_name", "firstName", "first name", "firstname", "fname", "given name", "nombre"},
	models.FieldLastName:  {"last_name", "lastName", "last name", "lastname", "lname", "surname", "family name", "apellidos"},
	models.FieldFullName:  {"full_name", "fullName", "full name", "nombre completo"},
	models.FieldEmail:     {"email", "e-mail", "mail", "email address", "correo", "correo electrónico", "correo electronico"},
	models.FieldWorkPhone: {"work_phone", "workPhone", "work phone", "office phone", "business phone", "tel", "phone", "telefono", "teléfono", "telefono ofi", "teléfono ofi"},
	models.FieldWorkPhoneExt: {"work_phone_ext", "ext", "extension", "extensión"},
	models.FieldMobilePhone:  {"mobile_phone", "mobilePhone", "mobile", "cell", "cellular", "mobile phone", "cell phone", "celular", "móvil"},

	// Address
	models.FieldAddressStreet:  {"address_street", "address", "street", "street address", "dirección", "direccion", "calle"},
	models.FieldAddressCity:    {"address_city", "city", "town", "ciudad"},
	models.FieldAddressState:   {"address_state", "state", "province", "region", "estado", "provincia"},
	models.FieldAddressPostal:  {"address_postal", "zip", "postal", "zip code", "postal code", "código postal", "codigo postal"},
	models.FieldAddressCountry: {"address_country", "country", "nation", "país", "pais"},

	// Socials
	models.FieldSocialInstagram: {"social_instagram", "instagram", "ig"},
	models.FieldSocialTwitter:   {"social_twitter", "twitter"},
	models.FieldSocialFacebook:  {"social_facebook", "facebook", "fb"},

	// Business
	models.FieldBusinessName:       {"business_name", "organization", "company", "business", "org", "empresa"},
	models.FieldBusinessTitle:      {"business_title", "title", "job title", "position", "role", "puesto", "cargo"},
	models.FieldBusinessDepartment: {"business_department", "department", "dept", "departamento", "area"},
	models.FieldBusinessURL:        {"business_url", "website", "url", "web", "sitio web"},
	models.FieldBusinessHours:      {"business_hours", "hours", "business hours", "horario"},

	// Business address overrides
	models.FieldBusinessAddressStreet:  {"business_address_street", "business address", "business street", "dirección trabajo"},
	models.FieldBusinessAddressCity:    {"business_address_city", "business city", "ciudad trabajo"},
	models.FieldBusinessAddressState:   {"business_address_state", "business state", "estado trabajo"},
	models.FieldBusinessAddressPostal:  {"business_address_postal", "business zip", "postal trabajo"},
	models.FieldBusinessAddressCountry: {"business_address_country", "business country", "país trabajo"},

	// Professional profiles
	models.FieldBusinessLinkedin: {"business_linkedin", "linkedin"},
	models.FieldBusinessTwitter:  {"business_twitter", "company twitter"},

	// Personal
	models.FieldPersonalURL:      {"personal_url", "personal website", "personal url", "sitio personal"},
	models.FieldPersonalBio:      {"personal_bio", "notes", "comments", "description", "notas", "comentarios", "bio", "biography"},
	models.FieldPersonalBirthday: {"personal_birthday", "birthday", "dob", "cumpleaños", "fecha nacimiento"},
}
