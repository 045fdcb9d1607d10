package test

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// MockBroadcast is one transaction received by MockLCD
type MockBroadcast struct {
	TxBytes []byte
	Mode    string
}

// MockLCD is an in-process cosmos REST gateway serving the account and broadcast endpoints
type MockLCD struct {
	Server *httptest.Server

	mu              sync.Mutex
	accountStatus   int
	accountBody     string
	broadcastStatus int
	broadcastBody   string
	accountHits     int
	broadcasts      []MockBroadcast
}

// NewMockLCD starts a gateway that reports every account with the given number
// and sequence and accepts every broadcast. It is closed on test cleanup.
func NewMockLCD(t *testing.T, accountNumber, sequence uint64) *MockLCD {
	t.Helper()

	m := &MockLCD{
		accountStatus: http.StatusOK,
		accountBody: fmt.Sprintf(`{"account":{"@type":"/cosmos.auth.v1beta1.BaseAccount","address":"%%s","pub_key":null,"account_number":"%d","sequence":"%d"}}`,
			accountNumber, sequence),
		broadcastStatus: http.StatusOK,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /cosmos/auth/v1beta1/accounts/{address}", m.handleAccount)
	mux.HandleFunc("POST /cosmos/tx/v1beta1/txs", m.handleBroadcast)

	m.Server = httptest.NewServer(mux)
	t.Cleanup(m.Server.Close)

	return m
}

// URL is the gateway base URL
func (m *MockLCD) URL() string {
	return m.Server.URL
}

// SetAccount replaces the account response. A %s in body is replaced with the requested address.
func (m *MockLCD) SetAccount(status int, body string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.accountStatus = status
	m.accountBody = body
}

// SetBroadcast replaces the broadcast response. An empty body echoes an accepted transaction.
func (m *MockLCD) SetBroadcast(status int, body string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.broadcastStatus = status
	m.broadcastBody = body
}

func (m *MockLCD) AccountHits() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.accountHits
}

func (m *MockLCD) Broadcasts() []MockBroadcast {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]MockBroadcast(nil), m.broadcasts...)
}

func (m *MockLCD) handleAccount(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.accountHits++
	status, body := m.accountStatus, m.accountBody
	m.mu.Unlock()

	if strings.Contains(body, "%s") {
		body = fmt.Sprintf(body, r.PathValue("address"))
	}

	writeJSON(w, status, body)
}

func (m *MockLCD) handleBroadcast(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TxBytes string `json:"tx_bytes"`
		Mode    string `json:"mode"`
	}

	payload, err := io.ReadAll(r.Body)
	if err == nil {
		err = json.Unmarshal(payload, &req)
	}

	txBytes, decodeErr := base64.StdEncoding.DecodeString(req.TxBytes)
	if err != nil || decodeErr != nil {
		writeJSON(w, http.StatusBadRequest, `{"code":3,"message":"invalid request body","details":[]}`)
		return
	}

	m.mu.Lock()
	m.broadcasts = append(m.broadcasts, MockBroadcast{TxBytes: txBytes, Mode: req.Mode})
	status, body := m.broadcastStatus, m.broadcastBody
	m.mu.Unlock()

	if body == "" {
		sum := sha256.Sum256(txBytes)
		body = fmt.Sprintf(`{"tx_response":{"height":"0","txhash":"%s","codespace":"","code":0,"data":"","raw_log":"[]","logs":[],"info":"","gas_wanted":"0","gas_used":"0","tx":null,"timestamp":"","events":[]}}`,
			strings.ToUpper(hex.EncodeToString(sum[:])))
	}

	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}
