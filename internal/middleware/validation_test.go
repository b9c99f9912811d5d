package middleware

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

type productPayload struct {
	Name          string `json:"name" validate:"required"`
	CategoryID    int64  `json:"category_id" validate:"required,gt=0"`
	Price         string `json:"price" validate:"required"`
	StockQuantity int    `json:"stock_quantity" validate:"gte=0"`
}

func decodePayload(t *testing.T, body map[string]any) error {
	t.Helper()

	reqBody, _ := json.Marshal(body)
	req := httptest.NewRequest("POST", "/api/products", bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")

	var payload productPayload
	return DecodeAndValidate(req, &payload)
}

func TestProperty_RequiredFieldsAreEnforced(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("payloads missing required fields are rejected", prop.ForAll(
		func(includeName bool, includeCategory bool, includePrice bool) bool {
			body := make(map[string]any)
			if includeName {
				body["name"] = "Espresso"
			}
			if includeCategory {
				body["category_id"] = 3
			}
			if includePrice {
				body["price"] = "2.50"
			}

			err := decodePayload(t, body)

			if includeName && includeCategory && includePrice {
				return err == nil
			}
			return err != nil
		},
		gen.Bool(),
		gen.Bool(),
		gen.Bool(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_StockBoundsAreEnforced(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("negative stock is rejected", prop.ForAll(
		func(stock int) bool {
			body := map[string]any{
				"name":           "Espresso",
				"category_id":    3,
				"price":          "2.50",
				"stock_quantity": stock,
			}

			err := decodePayload(t, body)

			if stock >= 0 {
				return err == nil
			}
			return err != nil
		},
		gen.IntRange(-50, 50),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestFormatValidationErrors(t *testing.T) {
	err := decodePayload(t, map[string]any{
		"category_id":    3,
		"price":          "2.50",
		"stock_quantity": -1,
	})
	if err == nil {
		t.Fatal("expected validation error")
	}

	formatted := FormatValidationErrors(err)
	if len(formatted) == 0 {
		t.Fatal("expected formatted validation errors")
	}

	for _, ve := range formatted {
		if ve.Field == "" || ve.Message == "" {
			t.Fatalf("incomplete validation error: %+v", ve)
		}
	}
}

func TestDecodeAndValidate_MalformedJSON(t *testing.T) {
	req := httptest.NewRequest("POST", "/api/products", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")

	var payload productPayload
	if err := DecodeAndValidate(req, &payload); err == nil {
		t.Fatal("expected decode error for malformed JSON")
	}
}
