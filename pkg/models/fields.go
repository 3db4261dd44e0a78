package models

import "fmt"

// Field identifies one updatable column of a contact record. The string
// value doubles as the column name in both stores, which keeps the
// relational UPDATE and the wide-column merge driven by the same mapping.
type Field string

const (
	FieldFullName  Field = "full_name"
	FieldFirstName Field = "first_name"
	FieldLastName  Field = "last_name"

	FieldWorkPhone    Field = "work_phone"
	FieldWorkPhoneExt Field = "work_phone_ext"
	FieldMobilePhone  Field = "mobile_phone"
	FieldEmail        Field = "email"

	FieldAddressStreet  Field = "address_street"
	FieldAddressCity    Field = "address_city"
	FieldAddressState   Field = "address_state"
	FieldAddressPostal  Field = "address_postal"
	FieldAddressCountry Field = "address_country"

	FieldSocialInstagram Field = "social_instagram"
	FieldSocialTwitter   Field = "social_twitter"
	FieldSocialFacebook  Field = "social_facebook"

	FieldBusinessName       Field = "business_name"
	FieldBusinessTitle      Field = "business_title"
	FieldBusinessDepartment Field = "business_department"
	FieldBusinessURL        Field = "business_url"
	FieldBusinessHours      Field = "business_hours"

	FieldBusinessAddressStreet  Field = "business_address_street"
	FieldBusinessAddressCity    Field = "business_address_city"
	FieldBusinessAddressState   Field = "business_address_state"
	FieldBusinessAddressPostal  Field = "business_address_postal"
	FieldBusinessAddressCountry Field = "business_address_country"

	FieldBusinessLinkedin Field = "business_linkedin"
	FieldBusinessTwitter  Field = "business_twitter"

	FieldPersonalURL      Field = "personal_url"
	FieldPersonalBio      Field = "personal_bio"
	FieldPersonalBirthday Field = "personal_birthday"
)

// fieldAccess maps every known field to its slot on ContactRecordFull.
// It is the single registry both stores and the ingestion mapper are driven
// from; adding a field here is all that is needed for it to flow end to end.
var fieldAccess = map[Field]func(*ContactRecordFull) *string{
	FieldFullName:  func(c *ContactRecordFull) *string { return &c.FullName },
	FieldFirstName: func(c *ContactRecordFull) *string { return &c.FirstName },
	FieldLastName:  func(c *ContactRecordFull) *string { return &c.LastName },

	FieldWorkPhone:    func(c *ContactRecordFull) *string { return &c.WorkPhone },
	FieldWorkPhoneExt: func(c *ContactRecordFull) *string { return &c.WorkPhoneExt },
	FieldMobilePhone:  func(c *ContactRecordFull) *string { return &c.MobilePhone },
	FieldEmail:        func(c *ContactRecordFull) *string { return &c.Email },

	FieldAddressStreet:  func(c *ContactRecordFull) *string { return &c.AddressStreet },
	FieldAddressCity:    func(c *ContactRecordFull) *string { return &c.AddressCity },
	FieldAddressState:   func(c *ContactRecordFull) *string { return &c.AddressState },
	FieldAddressPostal:  func(c *ContactRecordFull) *string { return &c.AddressPostal },
	FieldAddressCountry: func(c *ContactRecordFull) *string { return &c.AddressCountry },

	FieldSocialInstagram: func(c *ContactRecordFull) *string { return &c.SocialInstagram },
	FieldSocialTwitter:   func(c *ContactRecordFull) *string { return &c.SocialTwitter },
	FieldSocialFacebook:  func(c *ContactRecordFull) *string { return &c.SocialFacebook },

	FieldBusinessName:       func(c *ContactRecordFull) *string { return &c.BusinessName },
	FieldBusinessTitle:      func(c *ContactRecordFull) *string { return &c.BusinessTitle },
	FieldBusinessDepartment: func(c *ContactRecordFull) *string { return &c.BusinessDepartment },
	FieldBusinessURL:        func(c *ContactRecordFull) *string { return &c.BusinessURL },
	FieldBusinessHours:      func(c *ContactRecordFull) *string { return &c.BusinessHours },

	FieldBusinessAddressStreet:  func(c *ContactRecordFull) *string { return &c.BusinessAddressStreet },
	FieldBusinessAddressCity:    func(c *ContactRecordFull) *string { return &c.BusinessAddressCity },
	FieldBusinessAddressState:   func(c *ContactRecordFull) *string { return &c.BusinessAddressState },
	FieldBusinessAddressPostal:  func(c *ContactRecordFull) *string { return &c.BusinessAddressPostal },
	FieldBusinessAddressCountry: func(c *ContactRecordFull) *string { return &c.BusinessAddressCountry },

	FieldBusinessLinkedin: func(c *ContactRecordFull) *string { return &c.BusinessLinkedin },
	FieldBusinessTwitter:  func(c *ContactRecordFull) *string { return &c.BusinessTwitter },

	FieldPersonalURL:      func(c *ContactRecordFull) *string { return &c.PersonalURL },
	FieldPersonalBio:      func(c *ContactRecordFull) *string { return &c.PersonalBio },
	FieldPersonalBirthday: func(c *ContactRecordFull) *string { return &c.PersonalBirthday },
}

// searchableFields is the subset mirrored into the relational projection.
var searchableFields = map[Field]struct{}{
	FieldFullName:     {},
	FieldWorkPhone:    {},
	FieldMobilePhone:  {},
	FieldEmail:        {},
	FieldBusinessName: {},
}

// AllFields returns every known field identifier. Order is unspecified.
func AllFields() []Field {
	fields := make([]Field, 0, len(fieldAccess))
	for f := range fieldAccess {
		fields = append(fields, f)
	}
	return fields
}

// Searchable reports whether the field is mirrored into the projection.
func (f Field) Searchable() bool {
	_, ok := searchableFields[f]
	return ok
}

// ParseField validates a wire-format field name against the registry.
func ParseField(s string) (Field, error) {
	f := Field(s)
	if _, ok := fieldAccess[f]; !ok {
		return "", fmt.Errorf("unknown field %q", s)
	}
	return f, nil
}

// FieldUpdates is a sparse field-to-value mapping describing a partial
// update. Fields absent from the map are left untouched in both stores.
type FieldUpdates map[Field]string

// Validate rejects updates naming fields outside the registry.
func (u FieldUpdates) Validate() error {
	for f := range u {
		if _, ok := fieldAccess[f]; !ok {
			return fmt.Errorf("unknown field %q", string(f))
		}
	}
	return nil
}

// Searchable returns the subset of the updates that touches projection
// columns.
func (u FieldUpdates) Searchable() FieldUpdates {
	subset := make(FieldUpdates)
	for f, v := range u {
		if f.Searchable() {
			subset[f] = v
		}
	}
	return subset
}

// Columns renders the updates as a column-name-to-value map suitable for a
// dynamic UPDATE or merge statement.
func (u FieldUpdates) Columns() map[string]any {
	cols := make(map[string]any, len(u))
	for f, v := range u {
		cols[string(f)] = v
	}
	return cols
}

// Apply writes the updated values onto a full record in place.
func (u FieldUpdates) Apply(rec *ContactRecordFull) {
	for f, v := range u {
		if access, ok := fieldAccess[f]; ok {
			*access(rec) = v
		}
	}
}

// Get reads the current value of a field from a full record.
func (f Field) Get(rec *ContactRecordFull) string {
	if access, ok := fieldAccess[f]; ok {
		return *access(rec)
	}
	return ""
}
