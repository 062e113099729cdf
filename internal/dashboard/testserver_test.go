package dashboard

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
)

// fakeAPI is an in-process stand-in for the dashboard backend, just enough
// surface for the client components under test.
type fakeAPI struct {
	mu            sync.Mutex
	ordersCalls   int
	orders        []Order
	settings      *Settings
	savedSettings []Settings
	analyticsFail bool
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{}
}

func (f *fakeAPI) orderLoads() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ordersCalls
}

func (f *fakeAPI) lastSaved() (Settings, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.savedSettings) == 0 {
		return Settings{}, false
	}
	return f.savedSettings[len(f.savedSettings)-1], true
}

func (f *fakeAPI) setOrders(orders []Order) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders = orders
}

func writeTestJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func requireBearer(w http.ResponseWriter, r *http.Request) bool {
	if r.Header.Get("Authorization") == "" {
		writeTestJSON(w, http.StatusUnauthorized, map[string]any{
			"success": false, "message": "missing bearer token",
		})
		return false
	}
	return true
}

// start runs the fake backend. Valid credentials are demo/demo123 bound to
// merchant m1.
func (f *fakeAPI) start() *httptest.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/login", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Username != "demo" || req.Password != "demo123" {
			writeTestJSON(w, http.StatusUnauthorized, map[string]any{
				"success": false, "message": "Invalid credentials",
			})
			return
		}
		writeTestJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"token":   "tok-1",
			"user": User{
				Username:   "demo",
				Name:       "Demo Merchant",
				Role:       "merchant",
				MerchantID: "m1",
			},
		})
	})

	mux.HandleFunc("POST /api/logout", func(w http.ResponseWriter, _ *http.Request) {
		writeTestJSON(w, http.StatusOK, map[string]any{"success": true})
	})

	mux.HandleFunc("GET /api/orders/{merchantID}", func(w http.ResponseWriter, r *http.Request) {
		if !requireBearer(w, r) {
			return
		}
		f.mu.Lock()
		f.ordersCalls++
		orders := f.orders
		f.mu.Unlock()
		if orders == nil {
			orders = []Order{}
		}
		writeTestJSON(w, http.StatusOK, orders)
	})

	mux.HandleFunc("GET /api/payment-methods", func(w http.ResponseWriter, _ *http.Request) {
		writeTestJSON(w, http.StatusOK, map[string]MethodSchema{
			"mobile": {
				RequiredFields: []string{"label", "provider", "phone_number"},
				Providers:      []string{"MTN", "Airtel", "Zamtel"},
			},
			"card": {
				RequiredFields: []string{"label", "card_number", "expiry", "cvv"},
				Providers:      []string{"Visa", "Mastercard", "American Express"},
			},
			"bank": {
				RequiredFields: []string{"label", "account_number", "bank_name", "branch_code"},
				Providers:      []string{"ZANACO", "Stanbic", "Absa", "FNB"},
			},
		})
	})

	mux.HandleFunc("GET /api/merchant/{merchantID}", func(w http.ResponseWriter, r *http.Request) {
		if !requireBearer(w, r) {
			return
		}
		f.mu.Lock()
		s := f.settings
		f.mu.Unlock()
		if s == nil {
			writeTestJSON(w, http.StatusOK, struct{}{})
			return
		}
		writeTestJSON(w, http.StatusOK, s)
	})

	mux.HandleFunc("POST /api/merchant/{merchantID}", func(w http.ResponseWriter, r *http.Request) {
		if !requireBearer(w, r) {
			return
		}
		var s Settings
		_ = json.NewDecoder(r.Body).Decode(&s)
		f.mu.Lock()
		f.savedSettings = append(f.savedSettings, s)
		f.mu.Unlock()
		writeTestJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Payment method updated"})
	})

	mux.HandleFunc("POST /api/simulate-payment/{merchantID}/{orderID}", func(w http.ResponseWriter, r *http.Request) {
		if !requireBearer(w, r) {
			return
		}
		writeTestJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Payment simulation started"})
	})

	analytics := func(w http.ResponseWriter, r *http.Request, body string) {
		if !requireBearer(w, r) {
			return
		}
		f.mu.Lock()
		fail := f.analyticsFail
		f.mu.Unlock()
		if fail {
			writeTestJSON(w, http.StatusInternalServerError, map[string]any{
				"success": false, "message": "analytics unavailable",
			})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
	mux.HandleFunc("GET /api/analytics/orders/{merchantID}", func(w http.ResponseWriter, r *http.Request) {
		analytics(w, r, `{"dates":["2026-08-29","2026-08-30"],"order_counts":[1,2],"revenue_data":[10.50,20.00]}`)
	})
	mux.HandleFunc("GET /api/analytics/payment-methods/{merchantID}", func(w http.ResponseWriter, r *http.Request) {
		analytics(w, r, `{"mobile":100,"card":0,"bank":0}`)
	})
	mux.HandleFunc("GET /api/analytics/status-distribution/{merchantID}", func(w http.ResponseWriter, r *http.Request) {
		analytics(w, r, `{"paid":50,"pending":25,"failed":25}`)
	})

	return httptest.NewServer(mux)
}
