package v1

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/arnaudGHB/glconfig/internal/audit"
	"github.com/arnaudGHB/glconfig/internal/ledger"
	"github.com/arnaudGHB/glconfig/internal/lock"
	"github.com/arnaudGHB/glconfig/internal/storage/memory"
)

type apiFixture struct {
	srv    *Server
	store  *memory.Store
	branch ledger.Branch
	pos1   uuid.UUID
	pos2   uuid.UUID
	pos3   uuid.UUID
}

func newAPIFixture(t *testing.T, withRoots bool) *apiFixture {
	t.Helper()
	s := memory.New()
	branch := ledger.Branch{ID: uuid.New(), Code: "001", Name: "Head Office", BankID: uuid.New(), BankCode: "05"}
	s.SeedBranch(branch)
	chart := ledger.ChartOfAccount{ID: uuid.New(), AccountNumber: "371", Category: "LIABILITY", Description: "Member deposits"}
	s.SeedChart(chart)
	s.SeedPosition(ledger.ChartPosition{ID: uuid.New(), ChartOfAccountID: chart.ID, PositionNumber: "000", Description: "ROOT ACCOUNT", Root: true})
	pos1 := ledger.ChartPosition{ID: uuid.New(), ChartOfAccountID: chart.ID, PositionNumber: "001", Description: "Ordinary deposits"}
	pos2 := ledger.ChartPosition{ID: uuid.New(), ChartOfAccountID: chart.ID, PositionNumber: "002", Description: "Interest payable"}
	pos3 := ledger.ChartPosition{ID: uuid.New(), ChartOfAccountID: chart.ID, PositionNumber: "003", Description: "Term deposits"}
	s.SeedPosition(pos1)
	s.SeedPosition(pos2)
	s.SeedPosition(pos3)
	if withRoots {
		s.SeedAccountType(ledger.AccountType{ID: uuid.New(), Name: "Ordinary Accounts", Family: ledger.FamilyOrdinary})
		s.SeedAccountType(ledger.AccountType{ID: uuid.New(), Name: "Operational Accounts", Family: ledger.FamilyOperational})
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := New(s, lock.NewLocal(), audit.NewMemory(), logger)
	return &apiFixture{srv: srv, store: s, branch: branch, pos1: pos1.ID, pos2: pos2.ID, pos3: pos3.ID}
}

func (f *apiFixture) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	f.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func (f *apiFixture) branchHeaders() map[string]string {
	return map[string]string{"X-Branch-ID": f.branch.ID.String(), "X-User-ID": "tester"}
}

func configureBody(pos1, pos2 uuid.UUID) map[string]any {
	return map[string]any{
		"product_name": "Classic Savings",
		"product_type": "Saving_Product",
		"mappings": []map[string]any{
			{"rubrique": "Principal_Saving_Account", "chart_position_id": pos1.String()},
			{"rubrique": "Saving_Interest_Account", "chart_position_id": pos2.String()},
		},
	}
}

func TestPostConfigure(t *testing.T) {
	f := newAPIFixture(t, true)
	rec := f.do(t, http.MethodPost, "/v1/products/P1/accounting", configureBody(f.pos1, f.pos2), f.branchHeaders())
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp configureResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.WasCompletelySuccessful {
		t.Errorf("expected fully successful run, got not_updated=%v", resp.NotUpdated)
	}
	if resp.PrincipalAccountNumber != "371000050010001" {
		t.Errorf("principal_account_number = %q", resp.PrincipalAccountNumber)
	}
	if resp.ChartPositionID != f.pos1 {
		t.Errorf("chart_position_id = %s, want %s", resp.ChartPositionID, f.pos1)
	}
	if resp.NotUpdated == nil {
		t.Error("not_updated should serialize as [], not null")
	}
}

func TestPostConfigure_Rerun(t *testing.T) {
	f := newAPIFixture(t, true)
	body := configureBody(f.pos1, f.pos2)
	first := f.do(t, http.MethodPost, "/v1/products/P1/accounting", body, f.branchHeaders())
	if first.Code != http.StatusOK {
		t.Fatalf("first run status = %d", first.Code)
	}
	second := f.do(t, http.MethodPost, "/v1/products/P1/accounting", body, f.branchHeaders())
	if second.Code != http.StatusOK {
		t.Fatalf("second run status = %d, body = %s", second.Code, second.Body.String())
	}
	var resp configureResponse
	if err := json.NewDecoder(second.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.PrincipalAccountNumber != "371000050010001" {
		t.Errorf("rerun principal_account_number = %q", resp.PrincipalAccountNumber)
	}
	if got := f.store.AccountCount(); got != 2 {
		t.Errorf("account count after rerun = %d, want 2", got)
	}
}

func TestPostConfigure_MissingBranchHeader(t *testing.T) {
	f := newAPIFixture(t, true)
	rec := f.do(t, http.MethodPost, "/v1/products/P1/accounting", configureBody(f.pos1, f.pos2), nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestPostConfigure_UnknownBranch(t *testing.T) {
	f := newAPIFixture(t, true)
	headers := map[string]string{"X-Branch-ID": uuid.NewString()}
	rec := f.do(t, http.MethodPost, "/v1/products/P1/accounting", configureBody(f.pos1, f.pos2), headers)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestPostConfigure_UnknownRubrique(t *testing.T) {
	f := newAPIFixture(t, true)
	body := map[string]any{
		"product_name": "Classic Savings",
		"product_type": "Saving_Product",
		"mappings": []map[string]any{
			{"rubrique": "Teller_Principal_Account", "chart_position_id": f.pos1.String()},
		},
	}
	rec := f.do(t, http.MethodPost, "/v1/products/P1/accounting", body, f.branchHeaders())
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400, body = %s", rec.Code, rec.Body.String())
	}
}

func TestPostConfigure_DuplicateRubrique(t *testing.T) {
	f := newAPIFixture(t, true)
	body := map[string]any{
		"product_name": "Classic Savings",
		"product_type": "Saving_Product",
		"mappings": []map[string]any{
			{"rubrique": "Principal_Saving_Account", "chart_position_id": f.pos1.String()},
			{"rubrique": "Principal_Saving_Account", "chart_position_id": f.pos2.String()},
		},
	}
	rec := f.do(t, http.MethodPost, "/v1/products/P1/accounting", body, f.branchHeaders())
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400, body = %s", rec.Code, rec.Body.String())
	}
	if got := f.store.AccountCount(); got != 0 {
		t.Errorf("account count = %d, want 0", got)
	}
}

func TestPostConfigure_UnknownBodyField(t *testing.T) {
	f := newAPIFixture(t, true)
	body := configureBody(f.pos1, f.pos2)
	body["surprise"] = true
	rec := f.do(t, http.MethodPost, "/v1/products/P1/accounting", body, f.branchHeaders())
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestPostConfigure_NoAccountTypeRoot(t *testing.T) {
	f := newAPIFixture(t, false)
	rec := f.do(t, http.MethodPost, "/v1/products/P1/accounting", configureBody(f.pos1, f.pos2), f.branchHeaders())
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409, body = %s", rec.Code, rec.Body.String())
	}
	var resp errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Code != "no_account_type_root" {
		t.Errorf("error code = %q", resp.Code)
	}
}

func TestPutUpdate_ReassignmentWithConflict(t *testing.T) {
	f := newAPIFixture(t, true)
	first := f.do(t, http.MethodPost, "/v1/products/P1/accounting", configureBody(f.pos1, f.pos2), f.branchHeaders())
	if first.Code != http.StatusOK {
		t.Fatalf("configure status = %d", first.Code)
	}
	// Occupy the target position at this branch.
	f.store.SeedAccount(ledger.Account{
		ID: uuid.New(), ChartPositionID: f.pos3, BranchID: f.branch.ID,
		NetworkNumber: "371000050030001",
	})
	body := map[string]any{
		"product_name": "Classic Savings",
		"product_type": "Saving_Product",
		"mappings": []map[string]any{
			{"rubrique": "Saving_Interest_Account", "chart_position_id": f.pos3.String()},
		},
	}
	rec := f.do(t, http.MethodPut, "/v1/products/P1/accounting", body, f.branchHeaders())
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp updateResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.WasCompletelySuccessful {
		t.Error("expected a flagged run")
	}
	if len(resp.NotUpdated) != 1 {
		t.Errorf("not_updated = %v, want one diagnostic", resp.NotUpdated)
	}
	if resp.ItemsCreated != 0 {
		t.Errorf("items_created = %d, want 0", resp.ItemsCreated)
	}
}

func TestListRubriques(t *testing.T) {
	f := newAPIFixture(t, true)

	rec := f.do(t, http.MethodGet, "/v1/rubriques?family=ORD", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Items []map[string]any `json:"items"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Items) == 0 {
		t.Fatal("expected rubriques for the ORD family")
	}
	for _, item := range resp.Items {
		if item["direction"] == "" {
			t.Errorf("rubrique %v has no direction", item["name"])
		}
	}

	bad := f.do(t, http.MethodGet, "/v1/rubriques?family=XXX", nil, nil)
	if bad.Code != http.StatusBadRequest {
		t.Fatalf("invalid family status = %d, want 400", bad.Code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	f := newAPIFixture(t, true)
	if rec := f.do(t, http.MethodGet, "/healthz", nil, nil); rec.Code != http.StatusOK {
		t.Errorf("healthz status = %d", rec.Code)
	}
	if rec := f.do(t, http.MethodGet, "/readyz", nil, nil); rec.Code != http.StatusOK {
		t.Errorf("readyz status = %d", rec.Code)
	}
}
