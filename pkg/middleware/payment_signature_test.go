package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"travelpartner/pkg/logger"
)

const webhookPath = "/api/v1/payments/webhook"

func sign(body, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestPaymentWebhookSignature(t *testing.T) {
	const secret = "whsec_test"
	body := `{"event":"payment.captured"}`

	tests := []struct {
		name       string
		path       string
		secret     string
		signature  string
		wantStatus int
	}{
		{"valid signature", webhookPath, secret, sign(body, secret), http.StatusOK},
		{"prefixed signature", webhookPath, secret, "sha256=" + sign(body, secret), http.StatusOK},
		{"missing signature", webhookPath, secret, "", http.StatusUnauthorized},
		{"wrong secret", webhookPath, secret, sign(body, "other"), http.StatusUnauthorized},
		{"secret not configured", webhookPath, "", sign(body, secret), http.StatusUnauthorized},
		{"other path untouched", "/api/v1/bookings", secret, "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seenBody string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				b, _ := io.ReadAll(r.Body)
				seenBody = string(b)
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader(body))
			if tt.signature != "" {
				req.Header.Set(PaymentSignatureHeader, tt.signature)
			}
			rec := httptest.NewRecorder()

			PaymentWebhookSignature(tt.secret, webhookPath, logger.Discard())(next).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK && seenBody != body {
				t.Errorf("handler should see the original body, got %q", seenBody)
			}
		})
	}
}
