package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockpulse/internal/core/apperror"
	appctx "stockpulse/internal/core/context"
	"stockpulse/internal/core/types"
	"stockpulse/internal/domain/auth"
	"stockpulse/internal/domain/inventory"
	"stockpulse/internal/domain/lots"
	"stockpulse/internal/domain/reports"
	"stockpulse/internal/infrastructure/export"
	"stockpulse/internal/infrastructure/http/v1/dto"
)

const (
	apiToken  = "api-token"
	syncToken = "sync-token"
)

type fakeValidator struct{}

func (fakeValidator) ValidateToken(token string) (*appctx.UserContext, error) {
	switch token {
	case apiToken:
		return &appctx.UserContext{UserID: "admin", Scope: auth.ScopeAPI}, nil
	case syncToken:
		return &appctx.UserContext{UserID: "invoicex", Scope: auth.ScopeSync}, nil
	}
	return nil, errors.New("bad token")
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

type fakeIssuer struct{}

func (fakeIssuer) Login(_ context.Context, creds auth.Credentials) (*auth.Token, error) {
	if creds.Password != "secret" {
		return nil, apperror.NewUnauthorized("invalid credentials")
	}
	return &auth.Token{AccessToken: "jwt", TokenType: "Bearer", Scope: auth.ScopeAPI}, nil
}

// fakeLots records inputs and returns canned results.
type fakeLots struct {
	newPurchase lots.NewPurchase
	serviceUse  struct {
		itemID int64
		at     *time.Time
	}
	deleteErr error
	sales     []lots.SaleRecord
}

func (f *fakeLots) CreatePurchase(_ context.Context, in lots.NewPurchase) (*inventory.Lot, error) {
	f.newPurchase = in
	return &inventory.Lot{Purchase: inventory.Purchase{ID: 1, Code: in.Code}}, nil
}

func (f *fakeLots) UpdatePurchase(_ context.Context, id int64, _ lots.PurchasePatch) (*inventory.Purchase, error) {
	return &inventory.Purchase{ID: id}, nil
}

func (f *fakeLots) MarkArrived(_ context.Context, id int64, at *time.Time) (*inventory.Purchase, error) {
	return &inventory.Purchase{ID: id, DeliveryDate: at}, nil
}

func (f *fakeLots) FlagProblem(_ context.Context, id int64, t inventory.ProblemType, d string) (*inventory.Purchase, error) {
	p := &inventory.Purchase{ID: id}
	p.FlagProblem(t, d, time.Now())
	return p, nil
}

func (f *fakeLots) ClearProblem(_ context.Context, id int64) (*inventory.Purchase, error) {
	return &inventory.Purchase{ID: id}, nil
}

func (f *fakeLots) DeletePurchase(_ context.Context, _ int64) error { return f.deleteErr }

func (f *fakeLots) AddItem(_ context.Context, purchaseID int64, in lots.NewItem) (*inventory.Item, error) {
	return &inventory.Item{ID: 9, PurchaseID: purchaseID, Description: in.Description}, nil
}

func (f *fakeLots) GetItem(_ context.Context, id int64) (*inventory.Item, error) {
	return nil, apperror.NewNotFound("item", id)
}

func (f *fakeLots) UpdateItem(_ context.Context, id int64, _ lots.ItemPatch) (*inventory.Item, error) {
	return nil, apperror.NewItemSold(id)
}

func (f *fakeLots) DeleteItem(context.Context, int64) error { return nil }

func (f *fakeLots) MarkServiceUse(_ context.Context, itemID int64, at *time.Time) (*inventory.Sale, error) {
	f.serviceUse.itemID, f.serviceUse.at = itemID, at
	return &inventory.Sale{ID: 3, ItemID: itemID, Channel: inventory.ChannelServiceUse}, nil
}

func (f *fakeLots) RegisterSale(_ context.Context, in lots.NewSale) (*inventory.Sale, error) {
	return &inventory.Sale{ID: 4, ItemID: in.ItemID, SaleDate: in.SaleDate, Channel: in.Channel, GrossPrice: in.GrossPrice}, nil
}

func (f *fakeLots) UpdateSale(_ context.Context, id int64, _ lots.SalePatch) (*inventory.Sale, error) {
	return &inventory.Sale{ID: id}, nil
}

func (f *fakeLots) DeleteSale(context.Context, int64) error { return nil }

func (f *fakeLots) ImportPurchases(_ context.Context, records []lots.PurchaseRecord) lots.ImportPurchasesResult {
	return lots.ImportPurchasesResult{Received: len(records), Inserted: len(records)}
}

func (f *fakeLots) ImportSales(_ context.Context, records []lots.SaleRecord) lots.ImportSalesResult {
	f.sales = records
	return lots.ImportSalesResult{BatchID: "b1", Received: len(records), Inserted: len(records)}
}

func (f *fakeLots) UnsoldSerials(context.Context) ([]inventory.UnsoldItem, error) {
	return []inventory.UnsoldItem{{ItemID: 1, Serial: "SN-1", PurchaseCode: "ACQ-1"}}, nil
}

type fakeReports struct {
	query reports.ListQuery
}

func (f *fakeReports) ListPurchases(_ context.Context, q reports.ListQuery) ([]reports.PurchaseView, error) {
	f.query = q
	return []reports.PurchaseView{{Purchase: inventory.Purchase{ID: 1, Code: "ACQ-1"}}}, nil
}

func (f *fakeReports) GetPurchase(_ context.Context, id int64, _ *time.Time) (*reports.PurchaseDetail, error) {
	return nil, apperror.NewNotFound("purchase", id)
}

func (f *fakeReports) ListItems(_ context.Context, q reports.ListQuery) ([]reports.ItemView, error) {
	f.query = q
	return nil, nil
}

func (f *fakeReports) Performance(context.Context) ([]reports.PerformanceRow, error) {
	return []reports.PerformanceRow{{PurchaseCode: "ACQ-1", Status: "OK"}}, nil
}

func (f *fakeReports) Rollup(_ context.Context, g reports.Granularity) ([]reports.RollupBucket, error) {
	return []reports.RollupBucket{{Period: string(g)}}, nil
}

func (f *fakeReports) Staleness(context.Context, *time.Time) ([]reports.StaleItem, error) {
	return nil, nil
}

func (f *fakeReports) CriticalMargin(context.Context) ([]reports.CriticalMarginRow, error) {
	return nil, nil
}

func (f *fakeReports) DataQuality(context.Context) ([]reports.DataQualityRow, error) {
	return nil, nil
}

func (f *fakeReports) Dashboard(_ context.Context, asOf *time.Time) (*reports.Dashboard, error) {
	return &reports.Dashboard{AsOf: *asOf, Purchases: 2}, nil
}

type testAPI struct {
	lots    *fakeLots
	reports *fakeReports
	cfg     RouterConfig
}

func newTestAPI() *testAPI {
	api := &testAPI{lots: &fakeLots{}, reports: &fakeReports{}}
	api.cfg = RouterConfig{
		DB:           fakePinger{},
		JWTValidator: fakeValidator{},
		AuthService:  fakeIssuer{},
		Lots:         api.lots,
		Reports:      api.reports,
		Version:      "test",
	}
	return api
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	NewRouter(a.cfg).ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealth(t *testing.T) {
	api := newTestAPI()

	rec := api.do(t, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	api.cfg.DB = fakePinger{err: errors.New("connection refused")}
	rec = api.do(t, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAuthToken(t *testing.T) {
	api := newTestAPI()

	rec := api.do(t, http.MethodPost, "/api/v1/auth/token", "", dto.TokenRequest{Username: "admin", Password: "secret"})
	require.Equal(t, http.StatusOK, rec.Code)
	var token auth.Token
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &token))
	assert.Equal(t, "jwt", token.AccessToken)

	rec = api.do(t, http.MethodPost, "/api/v1/auth/token", "", dto.TokenRequest{Username: "admin", Password: "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/v1/auth/token", "", map[string]string{"username": "admin"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAccessControl(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		token  string
		status int
		code   string
	}{
		{"missing token", http.MethodGet, "/api/v1/purchases", "", http.StatusUnauthorized, apperror.CodeUnauthorized},
		{"invalid token", http.MethodGet, "/api/v1/purchases", "forged", http.StatusUnauthorized, apperror.CodeUnauthorized},
		{"sync token on operator routes", http.MethodGet, "/api/v1/purchases", syncToken, http.StatusForbidden, apperror.CodeForbidden},
		{"sync token on reports", http.MethodGet, "/api/v1/reports/dashboard", syncToken, http.StatusForbidden, apperror.CodeForbidden},
		{"sync token on sync routes", http.MethodGet, "/api/v1/sync/unsold-serials", syncToken, http.StatusOK, ""},
		{"operator token on sync routes", http.MethodGet, "/api/v1/sync/unsold-serials", apiToken, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := newTestAPI().do(t, tt.method, tt.path, tt.token, nil)
			assert.Equal(t, tt.status, rec.Code)
			if tt.code != "" {
				assert.Equal(t, tt.code, decodeError(t, rec).Code)
			}
		})
	}
}

func TestCreatePurchase(t *testing.T) {
	api := newTestAPI()

	body := `{
		"code": "ACQ-7",
		"source": "ebay",
		"seller": "acme",
		"baseCost": "250.50",
		"accessoryCost": 10,
		"deliveryDate": "2024-03-01",
		"items": [{"serial": "SN-1", "description": "Router"}, {"description": "Switch", "serviceUse": true}]
	}`
	rec := api.do(t, http.MethodPost, "/api/v1/purchases", apiToken, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	in := api.lots.newPurchase
	assert.Equal(t, "ACQ-7", in.Code)
	assert.True(t, types.MustMoney("250.5").Equal(in.BaseCost))
	assert.True(t, types.MustMoney("10").Equal(in.AccessoryCost))
	require.NotNil(t, in.DeliveryDate)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), *in.DeliveryDate)
	assert.Nil(t, in.PaymentDate)
	require.Len(t, in.Items, 2)
	assert.True(t, in.Items[1].ServiceUse)

	var lot inventory.Lot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lot))
	assert.Equal(t, int64(1), lot.Purchase.ID)
}

func TestCreatePurchaseRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"code":`},
		{"missing code", `{"source": "ebay", "seller": "acme"}`},
		{"bad date", `{"code": "A", "source": "ebay", "seller": "acme", "paymentDate": "01/03/2024"}`},
		{"item without description", `{"code": "A", "source": "ebay", "seller": "acme", "items": [{"serial": "X"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := newTestAPI().do(t, http.MethodPost, "/api/v1/purchases", apiToken, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, apperror.CodeValidation, decodeError(t, rec).Code)
		})
	}
}

func TestDeletePurchaseWithSales(t *testing.T) {
	api := newTestAPI()
	api.lots.deleteErr = apperror.NewHasSales("purchase", int64(5), 2)

	rec := api.do(t, http.MethodDelete, "/api/v1/purchases/5", apiToken, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, apperror.CodeHasSales, body.Code)
	assert.EqualValues(t, 2, body.Details["sales"])

	api.lots.deleteErr = nil
	rec = api.do(t, http.MethodDelete, "/api/v1/purchases/5", apiToken, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestListQueryParsing(t *testing.T) {
	api := newTestAPI()

	rec := api.do(t, http.MethodGet, "/api/v1/purchases?status=partially_sold&sort=urgency&asOf=2024-05-01", apiToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, reports.FilterPartiallySold, api.reports.query.Status)
	assert.Equal(t, reports.SortUrgency, api.reports.query.Sort)
	require.NotNil(t, api.reports.query.AsOf)
	assert.Equal(t, "2024-05-01", api.reports.query.AsOf.Format(dto.DateLayout))

	var list struct {
		Items      []reports.PurchaseView `json:"items"`
		TotalCount int                    `json:"totalCount"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, 1, list.TotalCount)

	rec = api.do(t, http.MethodGet, "/api/v1/items", apiToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"items": [], "totalCount": 0}`, rec.Body.String())

	for _, path := range []string{
		"/api/v1/purchases?status=bogus",
		"/api/v1/items?sort=bogus",
		"/api/v1/purchases?asOf=yesterday",
		"/api/v1/purchases/abc",
		"/api/v1/reports/rollup?granularity=year",
	} {
		rec := api.do(t, http.MethodGet, path, apiToken, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
}

func TestItemRoutes(t *testing.T) {
	api := newTestAPI()

	rec := api.do(t, http.MethodPost, "/api/v1/items/5/service-use", apiToken, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, int64(5), api.lots.serviceUse.itemID)
	assert.Nil(t, api.lots.serviceUse.at)

	rec = api.do(t, http.MethodPost, "/api/v1/items/6/service-use", apiToken, `{"date": "2024-02-10"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, api.lots.serviceUse.at)
	assert.Equal(t, 10, api.lots.serviceUse.at.Day())

	rec = api.do(t, http.MethodGet, "/api/v1/items/7", apiToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(t, http.MethodPut, "/api/v1/items/7", apiToken, `{"description": "x"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, apperror.CodeItemSold, decodeError(t, rec).Code)
}

func TestRegisterSale(t *testing.T) {
	api := newTestAPI()

	rec := api.do(t, http.MethodPost, "/api/v1/sales", apiToken,
		`{"itemId": 3, "saleDate": "2024-04-02", "channel": "ebay", "grossPrice": "120"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var sale inventory.Sale
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sale))
	assert.Equal(t, int64(3), sale.ItemID)
	assert.True(t, types.MustMoney("120").Equal(sale.GrossPrice))

	rec = api.do(t, http.MethodPost, "/api/v1/sales", apiToken, `{"saleDate": "2024-04-02", "channel": "ebay"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSyncSales(t *testing.T) {
	api := newTestAPI()

	rec := api.do(t, http.MethodPost, "/api/v1/sync/sales", syncToken, `{"records": [
		{"externalRef": "INV-1", "serial": "SN-1", "saleDate": "2024-04-02T10:00:00Z", "channel": "shop", "grossPrice": 99.9}
	]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res lots.ImportSalesResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 1, res.Inserted)
	require.Len(t, api.lots.sales, 1)
	assert.Equal(t, "INV-1", api.lots.sales[0].ExternalRef)
	assert.True(t, types.MustMoney("99.9").Equal(api.lots.sales[0].GrossPrice))

	rec = api.do(t, http.MethodPost, "/api/v1/sync/sales", syncToken, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReports(t *testing.T) {
	api := newTestAPI()

	rec := api.do(t, http.MethodGet, "/api/v1/reports/dashboard?asOf=2024-06-30", apiToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var d reports.Dashboard
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	assert.Equal(t, 2, d.Purchases)

	rec = api.do(t, http.MethodGet, "/api/v1/reports/rollup?granularity=week", apiToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"period":"week"`)
}

func TestReportExport(t *testing.T) {
	api := newTestAPI()

	rec := api.do(t, http.MethodGet, "/api/v1/reports/performance/export", apiToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, export.ContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "performance-")
	assert.NotZero(t, rec.Body.Len())

	rec = api.do(t, http.MethodGet, "/api/v1/reports/items/export?status=in_stock", apiToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "items-")
	assert.Equal(t, reports.FilterInStock, api.reports.query.Status)

		rec = api.do(t, http.MethodGet, "/api/v1/reports/unknown/export", apiToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
