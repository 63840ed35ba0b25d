package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/ethpandaops/e2e-harness/internal/testdata"
	"github.com/sirupsen/logrus"
)

const (
	usersPath     = "/api/users"
	productsPath  = "/api/products"
	ordersPath    = "/api/orders"
	companiesPath = "/api/companies"
)

// ErrMissingID is returned when a created entity has no id to clean it up by.
var ErrMissingID = errors.New("created entity has no id")

// DefaultOrderItems is the line count used when a test does not choose one.
const DefaultOrderItems = 3

// Helper creates entities through the API and remembers them so the test can
// delete them afterwards.
type Helper struct {
	log       logrus.FieldLogger
	client    *Client
	generator testdata.Generator

	mu      sync.Mutex
	created []string
}

// NewHelper creates a helper that posts entities produced by generator.
func NewHelper(log logrus.FieldLogger, client *Client, generator testdata.Generator) *Helper {
	return &Helper{
		log:       log.WithField("component", "api_helper"),
		client:    client,
		generator: generator,
		created:   make([]string, 0, 8),
	}
}

// Client returns the underlying JSON client.
func (h *Helper) Client() *Client {
	return h.client
}

// CreateTestUser posts a generated user.
func (h *Helper) CreateTestUser(ctx context.Context) (testdata.UserData, error) {
	user := h.generator.GenerateUser()
	h.log.WithField("username", user.Username).Info("creating test user")

	created, err := create(ctx, h, usersPath, "users", user, func(u testdata.UserData) string {
		return u.Username
	})
	if err != nil {
		return testdata.UserData{}, fmt.Errorf("creating test user: %w", err)
	}

	return created, nil
}

// CreateTestProduct posts a generated product.
func (h *Helper) CreateTestProduct(ctx context.Context) (testdata.ProductData, error) {
	product := h.generator.GenerateProduct()
	h.log.WithField("name", product.Name).Info("creating test product")

	created, err := create(ctx, h, productsPath, "products", product, func(p testdata.ProductData) string {
		return p.SKU
	})
	if err != nil {
		return testdata.ProductData{}, fmt.Errorf("creating test product: %w", err)
	}

	return created, nil
}

// CreateTestOrder posts a generated order with itemCount lines.
func (h *Helper) CreateTestOrder(ctx context.Context, itemCount int) (testdata.OrderData, error) {
	order := h.generator.GenerateOrder(itemCount)
	h.log.WithField("items", itemCount).Info("creating test order")

	created, err := create(ctx, h, ordersPath, "orders", order, func(o testdata.OrderData) string {
		return o.OrderNumber
	})
	if err != nil {
		return testdata.OrderData{}, fmt.Errorf("creating test order: %w", err)
	}

	return created, nil
}

// CreateTestCompany posts a generated company.
func (h *Helper) CreateTestCompany(ctx context.Context) (testdata.CompanyData, error) {
	company := h.generator.GenerateCompany()
	h.log.WithField("name", company.Name).Info("creating test company")

	created, err := create(ctx, h, companiesPath, "companies", company, func(c testdata.CompanyData) string {
		return c.Name
	})
	if err != nil {
		return testdata.CompanyData{}, fmt.Errorf("creating test company: %w", err)
	}

	return created, nil
}

// create posts entity and records it in the ledger. A response that does not
// name the resource, such as an empty 201, falls back to the posted entity.
// An entity without an id is never recorded.
func create[T any](ctx context.Context, h *Helper, path, collection string, entity T, id func(T) string) (T, error) {
	var zero T

	created, err := Post[T](ctx, h.client, path, entity)
	if err != nil {
		return zero, err
	}

	if id(created) == "" {
		h.log.WithField("collection", collection).Warn("create response carried no id, keeping the posted entity")

		created = entity
	}

	key := id(created)
	if key == "" {
		return zero, fmt.Errorf("%w: %s", ErrMissingID, collection)
	}

	h.track(collection + "/" + key)

	return created, nil
}

// Cleanup deletes every created resource in creation order. Failures are
// logged and skipped; the ledger is empty afterwards either way. It returns
// the number of resources that could not be deleted.
func (h *Helper) Cleanup(ctx context.Context) int {
	h.mu.Lock()
	resources := h.created
	h.created = make([]string, 0, 8)
	h.mu.Unlock()

	if len(resources) == 0 {
		return 0
	}

	h.log.WithField("count", len(resources)).Info("cleaning up test resources")

	failed := 0

	for _, resource := range resources {
		if err := h.client.Do(ctx, http.MethodDelete, resourcePath(resource), nil, nil); err != nil {
			failed++

			h.log.WithError(err).WithField("resource", resource).Warn("failed to delete test resource")
		}
	}

	return failed
}

// CreatedResources returns a copy of the ledger.
func (h *Helper) CreatedResources() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	result := make([]string, len(h.created))
	copy(result, h.created)

	return result
}

// resourcePath escapes the id part of a "{collection}/{id}" ledger entry.
func resourcePath(resource string) string {
	collection, id, _ := strings.Cut(resource, "/")

	return "/api/" + collection + "/" + url.PathEscape(id)
}

func (h *Helper) track(resource string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.created = append(h.created, resource)
}
