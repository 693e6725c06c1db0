package domain

type Subscriber struct {
	FirstName string `json:"nombre"`
	LastName  string `json:"apellido"`
	Phone     string `json:"telefono"`
	Instagram string `json:"instagram"`
	Email     string `json:"email"`
}
