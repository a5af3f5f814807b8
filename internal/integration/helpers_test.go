package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
)

var keysToIgnore = map[string]struct{}{
	"timestamp": {},
	"requestId": {},
	"createdAt": {},
	"paidAt":    {},
	"code":      {},
	"receipt":   {},
}

func prepareRequest(method, path string, body io.Reader, headers map[string]string) (*http.Request, error) {
	req := httptest.NewRequest(method, path, body)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req, nil
}

func compareResponse(t testing.TB, body io.Reader, expectedResponse string) {
	var actual map[string]any
	require.NoError(t, json.NewDecoder(body).Decode(&actual))

	cleanMap(actual)

	var expected map[string]any
	require.NoError(t, json.Unmarshal([]byte(expectedResponse), &expected))

	// ignore indeterministic fields while comparing
	opts := cmpopts.IgnoreMapEntries(func(k string, _ any) bool {
		_, ok := keysToIgnore[k]
		return ok
	})

	if diff := cmp.Diff(expected, actual, opts); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
}

func cleanMap(m map[string]any) {
	for k := range m {
		if _, ok := keysToIgnore[k]; ok {
			delete(m, k)
			continue
		}
		if nested, ok := m[k].(map[string]any); ok {
			cleanMap(nested)
		}
		if list, ok := m[k].([]any); ok {
			for _, item := range list {
				if nested, ok := item.(map[string]any); ok {
					cleanMap(nested)
				}
			}
		}
	}
}

func cleanDB(t testing.TB, app *TestApp) {
	_, err := app.DB.Exec(context.Background(),
		`TRUNCATE payments, reservation_services, reservations, services RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
}

// doJSON drives a request straight through the router and decodes the reply.
func doJSON(t testing.TB, app *TestApp, method, path, body string, wantStatus int) map[string]any {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req, err := prepareRequest(method, path, reader, nil)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	app.App.Routes().ServeHTTP(rec, req)

	require.Equal(t, wantStatus, rec.Code, "unexpected status for %s %s: %s", method, path, rec.Body.String())

	if rec.Body.Len() == 0 {
		return nil
	}

	var out map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))

	return out
}

func createService(t testing.TB, app *TestApp, name string, price string, mode string) int {
	body := fmt.Sprintf(`{"name": %q, "price": %s, "pricingMode": %q}`, name, price, mode)
	resp := doJSON(t, app, http.MethodPost, "/services", body, http.StatusCreated)

	return int(resp["id"].(float64))
}

func createReservation(t testing.TB, app *TestApp, headcount int, serviceIds ...int) map[string]any {
	ids := make([]string, 0, len(serviceIds))
	for _, id := range serviceIds {
		ids = append(ids, fmt.Sprint(id))
	}

	body := fmt.Sprintf(`{
		"customerName": "Ana Benitez",
		"customerEmail": "ana@example.com",
		"eventType": "wedding",
		"eventDate": "2026-09-12T00:00:00Z",
		"headcount": %d,
		"serviceIds": [%s]
	}`, headcount, strings.Join(ids, ","))

	return doJSON(t, app, http.MethodPost, "/reservations", body, http.StatusCreated)
}
