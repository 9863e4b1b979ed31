package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"shopledger/internal/app/server"
	"shopledger/internal/domain/auth"
	"shopledger/internal/platform/config"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type fixture struct {
	shopID     string
	productID  string
	employeeID string
}

func startApp(t *testing.T) (*server.App, *httptest.Server, config.Config) {
	t.Helper()
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := config.Load()
	cfg.DatabaseURL = dbURL
	cfg.JWTSecret = "test-secret"
	cfg.Environment = "test"
	cfg.RunMigrations = true
	cfg.MigrationsDir = "../../../../migrations"
	cfg.EmailEnabled = false
	cfg.LowStockScanInterval = 0
	cfg.RateLimitWrites = 1000

	app, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	ts := httptest.NewServer(app.Router)
	t.Cleanup(func() {
		ts.Close()
		app.Close()
	})
	return app, ts, cfg
}

func seed(t *testing.T, app *server.App, stock int) fixture {
	t.Helper()
	ctx := context.Background()
	var f fixture
	if err := app.DB.QueryRow(ctx, `
    INSERT INTO shops (name, commission_percentage) VALUES ($1, 10) RETURNING id
  `, fmt.Sprintf("shop-%d", time.Now().UnixNano())).Scan(&f.shopID); err != nil {
		t.Fatalf("failed to seed shop: %v", err)
	}
	if err := app.DB.QueryRow(ctx, `
    INSERT INTO products (shop_id, name, stock, purchase_price, low_stock_alert)
    VALUES ($1, 'Espresso beans', $2, 40, 2) RETURNING id
  `, f.shopID, stock).Scan(&f.productID); err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}
	if err := app.DB.QueryRow(ctx, `
    INSERT INTO employees (shop_id, user_id, name, email, base_salary)
    VALUES ($1, $2, 'Rina', 'rina@example.com', 30000) RETURNING id
  `, f.shopID, uuid.NewString()).Scan(&f.employeeID); err != nil {
		t.Fatalf("failed to seed employee: %v", err)
	}
	return f
}

func tokenFor(t *testing.T, cfg config.Config, role string, shopIDs ...string) string {
	t.Helper()
	token, err := auth.GenerateToken(cfg.JWTSecret, auth.Claims{UserID: uuid.NewString(), Role: role, ShopIDs: shopIDs}, time.Hour)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func TestOrderStockAndCommissionJourney(t *testing.T) {
	app, ts, cfg := startApp(t)
	f := seed(t, app, 5)
	token := tokenFor(t, cfg, auth.RoleOwner, f.shopID)
	client := ts.Client()

	env := doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/orders", token, map[string]any{
		"shopId":       f.shopID,
		"customerName": "Walk-in",
		"items":        []map[string]any{{"productId": f.productID, "quantity": 4, "unitPrice": "100"}},
		"cashAmount":   "400",
		"staffId":      f.employeeID,
	}, http.StatusCreated)
	var order struct {
		ID            string `json:"id"`
		Total         string `json:"total"`
		PaymentStatus string `json:"paymentStatus"`
		Commission    *struct {
			CommissionAmount string `json:"commissionAmount"`
		} `json:"commission"`
	}
	decodeData(t, env, &order)
	if order.Total != "400" || order.PaymentStatus != "completed" {
		t.Fatalf("unexpected order totals: %+v", order)
	}
	if order.Commission == nil || order.Commission.CommissionAmount != "40" {
		t.Fatalf("expected a 40 commission, got %+v", order.Commission)
	}
	if got := productStock(t, app, f.productID); got != 1 {
		t.Fatalf("expected stock 1 after order, got %d", got)
	}

	env = doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/orders", token, map[string]any{
		"shopId":       f.shopID,
		"customerName": "Walk-in",
		"items":        []map[string]any{{"productId": f.productID, "quantity": 2, "unitPrice": "100"}},
	}, http.StatusUnprocessableEntity)
	if env.Error == nil || env.Error.Code != "INSUFFICIENT_STOCK" {
		t.Fatalf("expected INSUFFICIENT_STOCK, got %+v", env.Error)
	}

	doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/orders/"+order.ID+"/status", token, map[string]any{"status": "cancelled"}, http.StatusOK)
	if got := productStock(t, app, f.productID); got != 5 {
		t.Fatalf("expected stock restored to 5, got %d", got)
	}

	env = doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/stock/movements?shopId="+f.shopID, token, nil, http.StatusOK)
	var movements []struct {
		Type string `json:"type"`
	}
	decodeData(t, env, &movements)
	if len(movements) != 2 {
		t.Fatalf("expected order and return movements, got %d", len(movements))
	}
}

func TestOrderIdempotencyJourney(t *testing.T) {
	app, ts, cfg := startApp(t)
	f := seed(t, app, 10)
	token := tokenFor(t, cfg, auth.RoleStaff, f.shopID)
	client := ts.Client()
	key := uuid.NewString()

	body := map[string]any{
		"shopId":       f.shopID,
		"customerName": "Table 4",
		"items":        []map[string]any{{"productId": f.productID, "quantity": 1, "unitPrice": "55.50"}},
	}
	first := doJSONWithKey(t, client, ts.URL+"/api/v1/orders", token, key, body, http.StatusCreated)
	second := doJSONWithKey(t, client, ts.URL+"/api/v1/orders", token, key, body, http.StatusCreated)

	var a, b struct {
		ID string `json:"id"`
	}
	decodeData(t, first, &a)
	decodeData(t, second, &b)
	if a.ID == "" || a.ID != b.ID {
		t.Fatalf("expected the replayed order %q, got %q", a.ID, b.ID)
	}
	if got := productStock(t, app, f.productID); got != 9 {
		t.Fatalf("expected a single debit, stock is %d", got)
	}

	body["customerName"] = "Table 5"
	doJSONWithKey(t, client, ts.URL+"/api/v1/orders", token, key, body, http.StatusConflict)
}

func TestConcurrentOrdersWithOneKeyDebitOnce(t *testing.T) {
	app, ts, cfg := startApp(t)
	f := seed(t, app, 10)
	token := tokenFor(t, cfg, auth.RoleStaff, f.shopID)
	client := ts.Client()

	raw, err := json.Marshal(map[string]any{
		"shopId":       f.shopID,
		"customerName": "Table 6",
		"items":        []map[string]any{{"productId": f.productID, "quantity": 1, "unitPrice": "55.50"}},
	})
	if err != nil {
		t.Fatalf("failed to encode payload: %v", err)
	}
	key := uuid.NewString()

	const workers = 6
	var wg sync.WaitGroup
	start := make(chan struct{})
	codes := make([]int, workers)
	errs := make([]error, workers)
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/v1/orders", bytes.NewReader(raw))
			if err != nil {
				errs[i] = err
				return
			}
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+token)
			req.Header.Set("Idempotency-Key", key)
			<-start
			resp, err := client.Do(req)
			if err != nil {
				errs[i] = err
				return
			}
			resp.Body.Close()
			codes[i] = resp.StatusCode
		}()
	}
	close(start)
	wg.Wait()

	created := 0
	for i := range workers {
		if errs[i] != nil {
			t.Fatalf("request %d failed: %v", i, errs[i])
		}
		switch codes[i] {
		case http.StatusCreated:
			created++
		case http.StatusConflict:
		default:
			t.Fatalf("request %d: unexpected status %d", i, codes[i])
		}
	}
	if created == 0 {
		t.Fatalf("expected at least one request to settle")
	}
	if got := productStock(t, app, f.productID); got != 9 {
		t.Fatalf("expected a single debit, stock is %d", got)
	}
}

func TestPayrollReleaseJourney(t *testing.T) {
	app, ts, cfg := startApp(t)
	f := seed(t, app, 1)
	manager := tokenFor(t, cfg, auth.RoleManager, f.shopID)
	staffToken := tokenFor(t, cfg, auth.RoleStaff, f.shopID)
	client := ts.Client()

	doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/salary/"+f.employeeID, manager, map[string]any{
		"amount":    "30000",
		"startDate": "2024-01-01",
	}, http.StatusCreated)

	release := map[string]any{"employeeId": f.employeeID, "month": "2024-06", "bonus": "500"}
	doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/payroll/releases", staffToken, release, http.StatusForbidden)

	env := doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/payroll/releases", manager, release, http.StatusCreated)
	var released struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	decodeData(t, env, &released)
	if released.ID == "" {
		t.Fatal("expected a release id")
	}

	env = doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/payroll/releases", manager, release, http.StatusConflict)
	if env.Error == nil || env.Error.Code != "already_released" {
		t.Fatalf("expected already_released, got %+v", env.Error)
	}

	env = doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/salary/"+f.employeeID, manager, map[string]any{
		"amount":    "32000",
		"startDate": "2024-05-01",
	}, http.StatusConflict)
	if env.Error == nil || env.Error.Code != "month_locked" {
		t.Fatalf("expected month_locked for a salary reaching a released month, got %+v", env.Error)
	}
	doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/salary/"+f.employeeID, manager, map[string]any{
		"amount":    "32000",
		"startDate": "2024-07-01",
	}, http.StatusCreated)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/v1/payroll/releases/"+released.ID+"/payslip", nil)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+manager)
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	pdf, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "application/pdf" {
		t.Fatalf("expected a pdf payslip, got %d %s", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Fatal("payslip body is not a pdf")
	}
}

func TestCrossShopAccessIsRejected(t *testing.T) {
	app, ts, cfg := startApp(t)
	mine := seed(t, app, 3)
	theirs := seed(t, app, 3)
	token := tokenFor(t, cfg, auth.RoleOwner, mine.shopID)

	doJSON(t, ts.Client(), http.MethodPost, ts.URL+"/api/v1/orders", token, map[string]any{
		"shopId":       theirs.shopID,
		"customerName": "Intruder",
		"items":        []map[string]any{{"productId": theirs.productID, "quantity": 1, "unitPrice": "10"}},
	}, http.StatusForbidden)

	if got := productStock(t, app, theirs.productID); got != 3 {
		t.Fatalf("foreign stock changed to %d", got)
	}
}

func productStock(t *testing.T, app *server.App, productID string) int {
	t.Helper()
	var stock int
	if err := app.DB.QueryRow(context.Background(), "SELECT stock FROM products WHERE id = $1", productID).Scan(&stock); err != nil {
		t.Fatalf("failed to read stock: %v", err)
	}
	return stock
}

func decodeData(t *testing.T, env envelope, out any) {
	t.Helper()
	if err := json.Unmarshal(env.Data, out); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}
}

func doJSON(t *testing.T, client *http.Client, method, url, token string, payload any, want int) envelope {
	t.Helper()
	return send(t, client, method, url, token, "", payload, want)
}

func doJSONWithKey(t *testing.T, client *http.Client, url, token, key string, payload any, want int) envelope {
	t.Helper()
	return send(t, client, http.MethodPost, url, token, key, payload, want)
}

func send(t *testing.T, client *http.Client, method, url, token, key string, payload any, want int) envelope {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to encode payload: %v", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response: %v", err)
	}
	if resp.StatusCode != want {
		t.Fatalf("expected status %d, got %d: %s", want, resp.StatusCode, string(raw))
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return env
}
