package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/Singularity-Shift/sui-squad/internal/core/domain"
)

type fakeActivityRepo struct {
	counts map[int64]map[int64]int64
	err    error
}

func newFakeActivityRepo() *fakeActivityRepo {
	return &fakeActivityRepo{counts: make(map[int64]map[int64]int64)}
}

func (f *fakeActivityRepo) Increment(_ context.Context, groupID, userID int64) error {
	if f.err != nil {
		return f.err
	}
	if f.counts[groupID] == nil {
		f.counts[groupID] = make(map[int64]int64)
	}
	f.counts[groupID][userID]++
	return nil
}

func (f *fakeActivityRepo) Top(_ context.Context, groupID int64, n int) ([]domain.ActivityRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	records := make([]domain.ActivityRecord, 0, len(f.counts[groupID]))
	for userID, count := range f.counts[groupID] {
		records = append(records, domain.ActivityRecord{GroupID: groupID, UserID: userID, Count: count})
	}
	return records, nil
}

type walletFixture struct {
	wallet   *WalletService
	sessions *sessionFixture
	activity *fakeActivityRepo
	key      domain.UserKey
	address  string
}

func newWalletFixture(t *testing.T) *walletFixture {
	t.Helper()

	f := newSessionFixture()
	f.prover.proof = domain.ZkLoginProof{
		Inputs:      json.RawMessage(`{}`),
		AddressSeed: "1001",
		Issuer:      "https://accounts.google.com",
	}
	activity := newFakeActivityRepo()

	wallet := NewWalletService(f.service, f.broker, f.chain, activity, f.events, 0, zap.NewNop())

	key := domain.UserKey{UserID: 3, ChatID: 30}
	if _, err := f.service.BeginLogin(context.Background(), key, domain.NetworkDevnet); err != nil {
		t.Fatalf("BeginLogin: %v", err)
	}
	pending := f.pending.logins[key]
	session, err := f.service.FinishLogin(context.Background(), key, f.callbackToken(t, pending))
	if err != nil {
		t.Fatalf("FinishLogin: %v", err)
	}

	return &walletFixture{
		wallet:   wallet,
		sessions: f,
		activity: activity,
		key:      key,
		address:  session.Address,
	}
}

func TestGetBalanceRequiresLogin(t *testing.T) {
	f := newSessionFixture()
	wallet := NewWalletService(f.service, f.broker, f.chain, nil, nil, 0, zap.NewNop())

	_, err := wallet.GetBalance(context.Background(), domain.UserKey{UserID: 5, ChatID: 5}, "")
	if !errors.Is(err, ErrAuthRequired) {
		t.Fatalf("expected ErrAuthRequired, got %v", err)
	}
}

func TestGetBalanceDefaultsToSui(t *testing.T) {
	w := newWalletFixture(t)
	w.sessions.chain.balance = domain.Balance{CoinType: SuiCoinType, CoinCount: 3, TotalBalance: 2_500_000_000}

	balance, err := w.wallet.GetBalance(context.Background(), w.key, "")
	if err != nil {
		t.Fatalf("GetBalance: %v", err)
	}
	if balance.TotalBalance != 2_500_000_000 {
		t.Errorf("unexpected balance %d", balance.TotalBalance)
	}
	if w.activity.counts[w.key.ChatID][w.key.UserID] != 1 {
		t.Error("expected balance lookup to count as activity")
	}
}

func TestGetWalletReturnsSessionAddress(t *testing.T) {
	w := newWalletFixture(t)

	address, err := w.wallet.GetWallet(context.Background(), w.key)
	if err != nil {
		t.Fatalf("GetWallet: %v", err)
	}
	if address != w.address {
		t.Errorf("expected %s, got %s", w.address, address)
	}
}

func TestSendSignsAndExecutes(t *testing.T) {
	w := newWalletFixture(t)

	digest, err := w.wallet.Send(context.Background(), w.key, "0xdead", "1.5", "")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if digest != "digest-1" {
		t.Errorf("unexpected digest %s", digest)
	}

	if len(w.sessions.chain.executed) != 1 {
		t.Fatalf("expected one executed transaction, got %d", len(w.sessions.chain.executed))
	}
	if w.sessions.chain.executed[0].Signature == "" {
		t.Error("expected an authenticator on the executed transaction")
	}

	if len(w.sessions.events.transfers) != 1 {
		t.Fatalf("expected one transfer event, got %d", len(w.sessions.events.transfers))
	}
	event := w.sessions.events.transfers[0]
	if event.AmountMist != 1_500_000_000 {
		t.Errorf("expected 1.5 SUI in MIST, got %d", event.AmountMist)
	}
	if event.Sender != w.address || event.Recipient != "0xdead" {
		t.Error("transfer event endpoints are wrong")
	}
}

func TestSendRejectsBadAmounts(t *testing.T) {
	w := newWalletFixture(t)

	for _, amount := range []string{"", "zero", "-1", "0", "0.0000000001"} {
		if _, err := w.wallet.Send(context.Background(), w.key, "0xdead", amount, ""); err == nil {
			t.Errorf("expected error for amount %q", amount)
		}
	}

	if len(w.sessions.chain.executed) != 0 {
		t.Error("no transaction should execute for invalid amounts")
	}
}

func TestSendExpiredBetweenBuildAndSign(t *testing.T) {
	w := newWalletFixture(t)

	// RequireAuthenticated passes on the cached session epoch, then the epoch
	// advances past the bound before signing.
	pendingEpoch := w.sessions.sessions.sessions[w.key].ValidUntilEpoch
	w.sessions.chain.epoch = pendingEpoch + 1

	_, err := w.wallet.Send(context.Background(), w.key, "0xdead", "1", "")
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
	if len(w.sessions.chain.executed) != 0 {
		t.Error("expired session must never reach execution")
	}
}

func TestWithdrawPublishesWithdrawalEvent(t *testing.T) {
	w := newWalletFixture(t)

	if _, err := w.wallet.Withdraw(context.Background(), w.key, "0xbeef", "0.25", ""); err != nil {
		t.Fatalf("Withdraw: %v", err)
	}

	if len(w.sessions.events.withdrawals) != 1 {
		t.Fatalf("expected one withdrawal event, got %d", len(w.sessions.events.withdrawals))
	}
	event := w.sessions.events.withdrawals[0]
	if event.Destination != "0xbeef" || event.AmountMist != 250_000_000 {
		t.Error("withdrawal event payload is wrong")
	}
}

func TestTopWithoutLedger(t *testing.T) {
	f := newSessionFixture()
	wallet := NewWalletService(f.service, f.broker, f.chain, nil, nil, 0, zap.NewNop())

	records, err := wallet.Top(context.Background(), 30, 10)
	if err != nil {
		t.Fatalf("Top: %v", err)
	}
	if records != nil {
		t.Error("expected no records when the ledger is disabled")
	}
}

func TestParseSuiAmount(t *testing.T) {
	cases := []struct {
		in      string
		want    uint64
		wantErr bool
	}{
		{in: "1", want: 1_000_000_000},
		{in: "0.5", want: 500_000_000},
		{in: " 2.25 ", want: 2_250_000_000},
		{in: "0.000000001", want: 1},
		{in: "0", wantErr: true},
		{in: "-3", wantErr: true},
		{in: "0.0000000001", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tc := range cases {
		got, err := ParseSuiAmount(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseSuiAmount(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseSuiAmount(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseSuiAmount(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestFormatSuiAmount(t *testing.T) {
	cases := []struct {
		in   uint64
		want string
	}{
		{in: 0, want: "0"},
		{in: 1_000_000_000, want: "1"},
		{in: 1_500_000_000, want: "1.5"},
		{in: 1, want: "0.000000001"},
		{in: 2_250_000_000, want: "2.25"},
	}

	for _, tc := range cases {
		if got := FormatSuiAmount(tc.in); got != tc.want {
			t.Errorf("FormatSuiAmount(%d) = %s, want %s", tc.in, got, tc.want)
		}
	}
}
