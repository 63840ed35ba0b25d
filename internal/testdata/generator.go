// Package testdata generates realistic fake entities for tests and loads
// hand-written fixtures from the data directory.
package testdata

import (
	"math"
	"strings"
	"sync"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/ethpandaops/e2e-harness/internal/config"
	"github.com/sirupsen/logrus"
)

const (
	dateLayout       = "2006-01-02"
	expiryLayout     = "01/06"
	companyContacts  = 2
	productTags      = 3
	orderNumberChars = 10
	passwordLength   = 12
)

// Generator produces fake domain entities.
type Generator interface {
	GenerateUser() UserData
	GenerateAddress() AddressData
	GeneratePayment() PaymentData
	GenerateProduct() ProductData
	GenerateOrder(itemCount int) OrderData
	GenerateCompany() CompanyData
	RandomString(length int) string
	RandomEmail() string
	RandomPhone() string
	RandomDate(from, to time.Time) time.Time
}

// generator implements Generator on a seeded faker.
type generator struct {
	log    logrus.FieldLogger
	mu     sync.Mutex
	faker  *gofakeit.Faker
	locale string
	now    func() time.Time
}

// NewGenerator creates a generator. The same non-zero seed always yields the
// same sequence of entities; zero picks a random seed.
func NewGenerator(log logrus.FieldLogger, settings config.TestDataSettings) Generator {
	g := &generator{
		log:    log.WithField("component", "testdata_generator"),
		faker:  gofakeit.New(settings.Seed),
		locale: settings.Locale,
		now:    time.Now,
	}

	g.log.WithFields(logrus.Fields{
		"locale": settings.Locale,
		"seed":   settings.Seed,
	}).Debug("initialized test data generator")

	return g
}

func (g *generator) GenerateUser() UserData {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.log.Debug("generating user data")

	return g.user()
}

func (g *generator) GenerateAddress() AddressData {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.address()
}

func (g *generator) GeneratePayment() PaymentData {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.log.Debug("generating payment data")

	return g.payment()
}

func (g *generator) GenerateProduct() ProductData {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.log.Debug("generating product data")

	return g.product()
}

// GenerateOrder builds an order with itemCount lines. Negative counts yield
// an order without lines.
func (g *generator) GenerateOrder(itemCount int) OrderData {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.log.WithField("items", itemCount).Debug("generating order data")

	if itemCount < 0 {
		itemCount = 0
	}

	order := OrderData{
		OrderNumber: strings.ToUpper(g.faker.Password(true, false, true, false, false, orderNumberChars)),
		OrderDate:   g.faker.DateRange(g.now().AddDate(0, 0, -7), g.now()).Format(dateLayout),
		Customer:    g.user(),
		Items:       make([]OrderItemData, 0, itemCount),
	}

	for i := 0; i < itemCount; i++ {
		order.Items = append(order.Items, OrderItemData{
			Product:  g.product(),
			Quantity: g.faker.Number(1, 5),
		})
	}

	order.ShippingAddress = g.address()
	order.PaymentInfo = g.payment()

	return order
}

func (g *generator) GenerateCompany() CompanyData {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.log.Debug("generating company data")

	company := CompanyData{
		Name:        g.faker.Company(),
		Industry:    g.faker.CompanySuffix(),
		Description: g.faker.BS(),
		Website:     g.faker.URL(),
		Email:       g.faker.Email(),
		Phone:       g.faker.Phone(),
		Address:     g.address(),
		Contacts:    make([]ContactData, 0, companyContacts),
	}

	for i := 0; i < companyContacts; i++ {
		company.Contacts = append(company.Contacts, ContactData{
			Name:  g.faker.Name(),
			Title: g.faker.JobTitle(),
			Email: g.faker.Email(),
			Phone: g.faker.Phone(),
		})
	}

	return company
}

func (g *generator) RandomString(length int) string {
	if length <= 0 {
		return ""
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	return g.faker.Password(true, true, true, false, false, length)
}

func (g *generator) RandomEmail() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.faker.Email()
}

func (g *generator) RandomPhone() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.faker.Phone()
}

// RandomDate picks a time in [from, to]. Zero bounds default to one year ago
// and now.
func (g *generator) RandomDate(from, to time.Time) time.Time {
	if from.IsZero() {
		from = g.now().AddDate(-1, 0, 0)
	}

	if to.IsZero() {
		to = g.now()
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	return g.faker.DateRange(from, to)
}

// The helpers below must be called with mu held.

func (g *generator) user() UserData {
	return UserData{
		FirstName:   g.faker.FirstName(),
		LastName:    g.faker.LastName(),
		Email:       g.faker.Email(),
		Username:    g.faker.Username(),
		Password:    g.faker.Password(true, true, true, true, false, passwordLength),
		PhoneNumber: g.faker.Phone(),
		DateOfBirth: g.faker.DateRange(g.now().AddDate(-50, 0, 0), g.now()).Format(dateLayout),
		Address:     g.address(),
	}
}

func (g *generator) address() AddressData {
	return AddressData{
		Street:     g.faker.Street(),
		City:       g.faker.City(),
		State:      g.faker.State(),
		PostalCode: g.faker.Zip(),
		Country:    g.faker.Country(),
	}
}

func (g *generator) payment() PaymentData {
	return PaymentData{
		CardNumber:     g.faker.CreditCardNumber(nil),
		CardHolder:     g.faker.FirstName() + " " + g.faker.LastName(),
		ExpirationDate: g.faker.DateRange(g.now(), g.now().AddDate(4, 0, 0)).Format(expiryLayout),
		Cvv:            g.faker.CreditCardCvv(),
		BillingAddress: g.address(),
	}
}

func (g *generator) product() ProductData {
	tags := make([]string, 0, productTags)
	for i := 0; i < productTags; i++ {
		tags = append(tags, g.faker.Adjective())
	}

	return ProductData{
		Name:        g.faker.ProductName(),
		Description: g.faker.ProductDescription(),
		Price:       math.Round(g.faker.Price(1, 1000)*100) / 100,
		Category:    g.faker.ProductCategory(),
		SKU:         g.faker.Numerify("#############"),
		Quantity:    g.faker.Number(1, 100),
		Tags:        tags,
	}
}

// Compile-time interface compliance check
var _ Generator = (*generator)(nil)
