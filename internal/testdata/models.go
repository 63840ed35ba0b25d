package testdata

// UserData is a generated person with login credentials.
type UserData struct {
	FirstName   string      `json:"firstName" yaml:"firstName"`
	LastName    string      `json:"lastName" yaml:"lastName"`
	Email       string      `json:"email" yaml:"email"`
	Username    string      `json:"username" yaml:"username"`
	Password    string      `json:"password" yaml:"password"`
	PhoneNumber string      `json:"phoneNumber" yaml:"phoneNumber"`
	DateOfBirth string      `json:"dateOfBirth" yaml:"dateOfBirth"`
	Address     AddressData `json:"address" yaml:"address"`
}

// AddressData is a postal address.
type AddressData struct {
	Street     string `json:"street" yaml:"street"`
	City       string `json:"city" yaml:"city"`
	State      string `json:"state" yaml:"state"`
	PostalCode string `json:"postalCode" yaml:"postalCode"`
	Country    string `json:"country" yaml:"country"`
}

// PaymentData is a card with its billing address.
type PaymentData struct {
	CardNumber     string      `json:"cardNumber" yaml:"cardNumber"`
	CardHolder     string      `json:"cardHolder" yaml:"cardHolder"`
	ExpirationDate string      `json:"expirationDate" yaml:"expirationDate"`
	Cvv            string      `json:"cvv" yaml:"cvv"`
	BillingAddress AddressData `json:"billingAddress" yaml:"billingAddress"`
}

// ProductData is a catalogue item.
type ProductData struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Price       float64  `json:"price" yaml:"price"`
	Category    string   `json:"category" yaml:"category"`
	SKU         string   `json:"sku" yaml:"sku"`
	Quantity    int      `json:"quantity" yaml:"quantity"`
	Tags        []string `json:"tags" yaml:"tags"`
}

// OrderItemData is one order line.
type OrderItemData struct {
	Product  ProductData `json:"product" yaml:"product"`
	Quantity int         `json:"quantity" yaml:"quantity"`
}

// OrderData is a complete order.
type OrderData struct {
	OrderNumber     string          `json:"orderNumber" yaml:"orderNumber"`
	OrderDate       string          `json:"orderDate" yaml:"orderDate"`
	Customer        UserData        `json:"customer" yaml:"customer"`
	Items           []OrderItemData `json:"items" yaml:"items"`
	ShippingAddress AddressData     `json:"shippingAddress" yaml:"shippingAddress"`
	PaymentInfo     PaymentData     `json:"paymentInfo" yaml:"paymentInfo"`
}

// ContactData is a person at a company.
type ContactData struct {
	Name  string `json:"name" yaml:"name"`
	Title string `json:"title" yaml:"title"`
	Email string `json:"email" yaml:"email"`
	Phone string `json:"phone" yaml:"phone"`
}

// CompanyData is a company with two contacts.
type CompanyData struct {
	Name        string        `json:"name" yaml:"name"`
	Industry    string        `json:"industry" yaml:"industry"`
	Description string        `json:"description" yaml:"description"`
	Website     string        `json:"website" yaml:"website"`
	Email       string        `json:"email" yaml:"email"`
	Phone       string        `json:"phone" yaml:"phone"`
	Address     AddressData   `json:"address" yaml:"address"`
	Contacts    []ContactData `json:"contacts" yaml:"contacts"`
}
