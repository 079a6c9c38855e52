package directory

// Attribute names consumed from the directory schema.
const (
	AttrAccountName       = "sAMAccountName"
	AttrPrincipalName     = "userPrincipalName"
	AttrDisplayName       = "displayName"
	AttrMail              = "mail"
	AttrDepartment        = "department"
	AttrDistinguishedName = "distinguishedName"
)
