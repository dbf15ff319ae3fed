package model

// Staff permission types as stored in permission.permission_type.
const (
	PermissionAdmin    = "Admin"
	PermissionOperator = "Operator"
)

// AirlineStaff mirrors the airline_staff table.  Staff members belong
// to exactly one airline and may hold Admin and/or Operator
// permissions granted through the permission table.
type AirlineStaff struct {
	Username     string // airline_staff.username
	PasswordHash string // airline_staff.password
	FirstName    string // airline_staff.first_name
	LastName     string // airline_staff.last_name
	DateOfBirth  string // airline_staff.date_of_birth
	AirlineName  string // airline_staff.airline_name
}
