package admin

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/veilspire/gridlink/internal/platform/i18n"
	"github.com/veilspire/gridlink/internal/rules"
	"github.com/veilspire/gridlink/internal/rules/catalog"
	"github.com/veilspire/gridlink/internal/services/admin/routepath"
	"github.com/veilspire/gridlink/internal/services/game/app"
	"github.com/veilspire/gridlink/internal/services/game/domain/character"
	"github.com/veilspire/gridlink/internal/services/game/domain/inventory"
	"github.com/veilspire/gridlink/internal/services/game/domain/payment"
	"github.com/veilspire/gridlink/internal/services/game/storage/sqlite"
	"github.com/veilspire/gridlink/internal/token"
)

type adminFixture struct {
	server  *httptest.Server
	service *app.Service
	config  token.Config
}

func newAdminFixture(t *testing.T) *adminFixture {
	t.Helper()

	store, err := sqlite.Open(filepath.Join(t.TempDir(), "game.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	cat, err := catalog.LoadEmbedded()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	logger := log.New(io.Discard, "", 0)
	service, err := app.New(store, cat, logger)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	bundle, err := i18n.LoadEmbedded()
	if err != nil {
		t.Fatalf("load locales: %v", err)
	}

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	cfg := token.Config{
		Issuer:     "gridlink-admin",
		Audience:   "admin-service",
		PublicKey:  pub,
		PrivateKey: priv,
		TTL:        time.Hour,
	}

	server, err := New(":0", service, bundle, cfg, logger)
	if err != nil {
		t.Fatalf("new admin server: %v", err)
	}
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)

	return &adminFixture{server: ts, service: service, config: cfg}
}

func (f *adminFixture) register(t *testing.T, name, region string) character.Character {
	t.Helper()
	c, err := f.service.RegisterCharacter(context.Background(), character.RegisterInput{
		Name:   name,
		Kind:   character.KindPC,
		Region: region,
		Base:   rules.BaseStats{MaxHealth: 100, Attack: 10, Defense: 8, Speed: 12, Regen: 2},
	})
	if err != nil {
		t.Fatalf("register character: %v", err)
	}
	return c
}

func (f *adminFixture) get(t *testing.T, path string, role token.Role, out any) *http.Response {
	t.Helper()

	r, err := http.NewRequest(http.MethodGet, f.server.URL+path, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if role != "" {
		raw, err := token.Issue("user-1", role, f.config)
		if err != nil {
			t.Fatalf("issue token: %v", err)
		}
		r.Header.Set("Authorization", "Bearer "+raw)
	}

	resp, err := f.server.Client().Do(r)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })

	if out != nil && resp.StatusCode < http.StatusMultipleChoices {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp
}

func TestProfileIsPublic(t *testing.T) {
	t.Parallel()

	f := newAdminFixture(t)
	c := f.register(t, "Vex", "emberfall")
	if _, _, err := f.service.ApplyEffect(context.Background(), c.ID, app.ApplyEffectInput{TemplateKey: "ember_ward"}); err != nil {
		t.Fatalf("apply effect: %v", err)
	}

	var profile profilePayload
	resp := f.get(t, routepath.Profile(c.ID), "", &profile)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if profile.Name != "Vex" || len(profile.Effects) != 1 {
		t.Fatalf("profile = %+v, want Vex with one effect", profile)
	}
}

func TestDashboardRequiresToken(t *testing.T) {
	t.Parallel()

	f := newAdminFixture(t)
	resp := f.get(t, routepath.Characters, "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestListCharactersWithFilter(t *testing.T) {
	t.Parallel()

	f := newAdminFixture(t)
	f.register(t, "Vex", "emberfall")
	f.register(t, "Mara", "duskmoor")

	var page characterListPayload
	path := routepath.Characters + "?filter=" + url.QueryEscape(`region == "duskmoor"`)
	resp := f.get(t, path, token.RoleViewer, &page)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if len(page.Characters) != 1 || page.Characters[0].Name != "Mara" {
		t.Fatalf("characters = %+v, want only Mara", page.Characters)
	}
}

func TestListCharactersInvalidFilterLocalized(t *testing.T) {
	t.Parallel()

	f := newAdminFixture(t)

	r, err := http.NewRequest(http.MethodGet, f.server.URL+routepath.Characters+"?filter="+url.QueryEscape("bogus == 1")+"&lang=pt-BR", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	raw, err := token.Issue("user-1", token.RoleViewer, f.config)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	r.Header.Set("Authorization", "Bearer "+raw)

	resp, err := f.server.Client().Do(r)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}

	var body errorBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Error.Code != "FILTER_INVALID" {
		t.Fatalf("code = %q, want FILTER_INVALID", body.Error.Code)
	}
	if !strings.Contains(body.Error.Message, "inválida") {
		t.Fatalf("message = %q, want pt-BR translation", body.Error.Message)
	}
}

func TestPaymentStatistics(t *testing.T) {
	t.Parallel()

	f := newAdminFixture(t)
	c := f.register(t, "Vex", "emberfall")
	for _, amount := range []int64{100, 200, 300} {
		if _, err := f.service.RecordPayment(context.Background(), payment.RecordInput{
			GridTxnID:   fmt.Sprintf("txn-%d", amount),
			CharacterID: c.ID,
			Region:      "emberfall",
			Amount:      amount,
		}); err != nil {
			t.Fatalf("record payment: %v", err)
		}
	}

	var stats payment.Statistics
	resp := f.get(t, routepath.PaymentsStatistics+"?region=emberfall", token.RoleViewer, &stats)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if stats.Count != 3 || stats.Total != 600 || stats.Mean != 200 {
		t.Fatalf("stats = %+v, want count 3 total 600 mean 200", stats)
	}
}

func TestInventoryExportNeedsOperator(t *testing.T) {
	t.Parallel()

	f := newAdminFixture(t)
	c := f.register(t, "Vex", "emberfall")
	if _, err := f.service.GrantItem(context.Background(), inventory.ChangeInput{CharacterID: c.ID, ItemKey: "rope", Quantity: 2}); err != nil {
		t.Fatalf("grant item: %v", err)
	}

	if resp := f.get(t, routepath.InventoryExport, token.RoleViewer, nil); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("viewer status = %d, want 401", resp.StatusCode)
	}

	resp := f.get(t, routepath.InventoryExport, token.RoleOperator, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("operator status = %d, want 200", resp.StatusCode)
	}
	if got := resp.Header.Get("Content-Type"); got != "application/zstd" {
		t.Fatalf("content type = %q, want application/zstd", got)
	}

	reader, err := zstd.NewReader(resp.Body)
	if err != nil {
		t.Fatalf("open zstd reader: %v", err)
	}
	defer reader.Close()

	var stack inventory.Stack
	if err := json.NewDecoder(reader).Decode(&stack); err != nil {
		t.Fatalf("decode stack: %v", err)
	}
	if stack.ItemKey != "rope" || stack.Quantity != 2 {
		t.Fatalf("stack = %+v, want rope x2", stack)
	}
}

func TestListPaymentsWithFilter(t *testing.T) {
	t.Parallel()

	f := newAdminFixture(t)
	c := f.register(t, "Vex", "emberfall")
	amounts := map[string]int64{"txn-1": 50, "txn-2": 500}
	for txn, amount := range amounts {
		if _, err := f.service.RecordPayment(context.Background(), payment.RecordInput{
			GridTxnID:   txn,
			CharacterID: c.ID,
			Region:      "emberfall",
			Amount:      amount,
		}); err != nil {
			t.Fatalf("record payment: %v", err)
		}
	}

	var page paymentListPayload
	path := routepath.Payments + "?filter=" + url.QueryEscape("amount > 100")
	resp := f.get(t, path, token.RoleViewer, &page)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if len(page.Payments) != 1 || page.Payments[0].Amount != 500 {
		t.Fatalf("payments = %+v, want single 500 entry", page.Payments)
	}
}
