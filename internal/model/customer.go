package model

// Customer mirrors the customer table.  The email is the primary key
// and also the purchaser identity recorded on purchases.
type Customer struct {
	Email              string // customer.email
	Name               string // customer.name
	PasswordHash       string // customer.password
	BuildingNumber     string // customer.building_number
	Street             string // customer.street
	City               string // customer.city
	State              string // customer.state
	PhoneNumber        string // customer.phone_number
	PassportNumber     string // customer.passport_number
	PassportExpiration string // customer.passport_expiration
	PassportCountry    string // customer.passport_country
	DateOfBirth        string // customer.date_of_birth
}
