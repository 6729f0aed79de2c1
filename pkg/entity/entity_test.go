package entity_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/vworld-labs/world-sdk-go/pkg/entity"
	"github.com/vworld-labs/world-sdk-go/pkg/ledger/ledgertest"
	"github.com/vworld-labs/world-sdk-go/pkg/shared"
	"github.com/vworld-labs/world-sdk-go/pkg/signing"
)

var epoch = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	ledger    *ledgertest.Ledger
	platform  *ledgertest.Platform
	binder    *entity.Binder
	registry  *entity.Registry
	registrar *entity.Registrar
	authority *signing.KeySigner
	clock     time.Time
}

func newKey(t *testing.T) *signing.KeySigner {
	t.Helper()
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}
	return signing.NewKeySigner(key)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{ledger: ledgertest.New(), authority: newKey(t), clock: epoch}
	f.platform = ledgertest.NewPlatform(f.ledger, f.authority.Address())
	f.platform.Now = func() time.Time { return f.clock }

	binder, err := entity.NewBinder(entity.BinderConfig{
		Backend:      f.ledger,
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		PollInterval: time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewBinder failed: %v", err)
	}
	f.binder = binder
	if f.registry, err = binder.Registry(ledgertest.RegistryAddress); err != nil {
		t.Fatalf("bind registry: %v", err)
	}
	if f.registrar, err = binder.Registrar(ledgertest.RegistrarAddress); err != nil {
		t.Fatalf("bind registrar: %v", err)
	}
	return f
}

func worldVector() signing.VectorAddress {
	return signing.VectorAddress{
		X: "100", Y: "200", Z: "300",
		T: big.NewInt(0), P: big.NewInt(0), PSub: big.NewInt(0),
	}
}

func companyTerms() signing.RegistrationTerms {
	return signing.RegistrationTerms{
		Fee:                big.NewInt(1_000),
		CoveragePeriodDays: big.NewInt(30),
		GracePeriodDays:    big.NewInt(7),
	}
}

func (f *fixture) registerWorld(t *testing.T, owner *signing.KeySigner) *entity.World {
	t.Helper()
	expiration := signing.ExpirationAfter(f.clock, time.Hour)
	claim, err := signing.SignVector(f.authority, worldVector(), owner.Address(), expiration)
	if err != nil {
		t.Fatalf("SignVector failed: %v", err)
	}
	registration, err := f.registrar.RegisterWorld(context.Background(), owner, entity.RegisterWorldRequest{
		Owner:  owner.Address(),
		Name:   "Aurora",
		Vector: worldVector(),
		Claim:  claim,
	})
	if err != nil {
		t.Fatalf("RegisterWorld failed: %v", err)
	}
	world, err := f.binder.World(registration.Address)
	if err != nil {
		t.Fatalf("bind world: %v", err)
	}
	return world
}

func (f *fixture) registerCompany(t *testing.T, world *entity.World, worldOwner, owner *signing.KeySigner) *entity.Company {
	t.Helper()
	terms := companyTerms()
	grant, err := signing.SignTerms(worldOwner, owner.Address(), terms, signing.ExpirationAfter(f.clock, time.Hour))
	if err != nil {
		t.Fatalf("SignTerms failed: %v", err)
	}
	f.ledger.Fund(owner.Address(), big.NewInt(1_000_000))
	registration, err := world.RegisterCompany(context.Background(), owner, entity.RegisterCompanyRequest{
		Owner: owner.Address(),
		Name:  "Lumen Labs",
		Terms: terms,
		Grant: grant,
		Fee:   terms.Fee,
	})
	if err != nil {
		t.Fatalf("RegisterCompany failed: %v", err)
	}
	company, err := f.binder.Company(registration.Address)
	if err != nil {
		t.Fatalf("bind company: %v", err)
	}
	return company
}

func TestRegisterWorldDecodesCreatedAddress(t *testing.T) {
	f := newFixture(t)
	owner := newKey(t)
	world := f.registerWorld(t, owner)

	ctx := context.Background()
	byName, err := f.registry.GetByName(ctx, "Aurora")
	if err != nil {
		t.Fatalf("GetByName failed: %v", err)
	}
	if byName != world.Address() {
		t.Fatalf("registry resolved %s, want %s", byName.Hex(), world.Address().Hex())
	}
	byVector, err := f.registry.GetByVector(ctx, worldVector())
	if err != nil || byVector != world.Address() {
		t.Fatalf("GetByVector = %s (%v)", byVector.Hex(), err)
	}
	registered, err := f.registry.IsRegistered(ctx, world.Address())
	if err != nil || !registered {
		t.Fatalf("expected world to be registered (%v)", err)
	}

	if _, ok := f.binder.Correlator().Registry().Lookup(world.Address()); !ok {
		t.Fatalf("expected created world to be discoverable for decoding")
	}
	if _, err := f.registry.GetByName(ctx, "Nowhere"); !errors.Is(err, shared.ErrAddressNotFound) {
		t.Fatalf("expected address_not_found for unknown name, got %v", err)
	}
}

func TestRegisterWorldRejectsClaimForDifferentOwner(t *testing.T) {
	f := newFixture(t)
	owner := newKey(t)
	impostor := newKey(t)

	expiration := signing.ExpirationAfter(f.clock, time.Hour)
	claim, err := signing.SignVector(f.authority, worldVector(), owner.Address(), expiration)
	if err != nil {
		t.Fatalf("SignVector failed: %v", err)
	}
	_, err = f.registrar.RegisterWorld(context.Background(), impostor, entity.RegisterWorldRequest{
		Owner:  impostor.Address(),
		Name:   "Aurora",
		Vector: worldVector(),
		Claim:  claim,
	})
	if !errors.Is(err, shared.ErrAuthorizationMismatch) {
		t.Fatalf("expected authorization_mismatch, got %v", err)
	}
	if f.ledger.Nonce(impostor.Address()) != 0 {
		t.Fatalf("rejected registration must not be mined")
	}
}

func TestRegisterCompanyAndAddExperience(t *testing.T) {
	f := newFixture(t)
	worldOwner := newKey(t)
	companyOwner := newKey(t)
	world := f.registerWorld(t, worldOwner)
	company := f.registerCompany(t, world, worldOwner, companyOwner)

	ctx := context.Background()
	if got := f.ledger.Balance(world.Address()); got.Int64() != 1_000 {
		t.Fatalf("expected registration fee paid to world, got %s", got)
	}
	vector, err := company.VectorAddress(ctx)
	if err != nil {
		t.Fatalf("VectorAddress failed: %v", err)
	}
	if vector.X != "100" || vector.P.Int64() != 1 {
		t.Fatalf("unexpected company vector %s", vector)
	}

	registration, err := company.AddExperience(ctx, companyOwner, entity.AddExperienceRequest{
		Name:     "Observatory",
		EntryFee: big.NewInt(25),
	})
	if err != nil {
		t.Fatalf("AddExperience failed: %v", err)
	}
	if registration.PortalID.Int64() != 1 {
		t.Fatalf("expected first portal id 1, got %s", registration.PortalID)
	}
	experience, err := f.binder.Experience(registration.Address)
	if err != nil {
		t.Fatalf("bind experience: %v", err)
	}
	name, err := experience.Name(ctx)
	if err != nil || name != "Observatory" {
		t.Fatalf("unexpected experience name %q (%v)", name, err)
	}
	fee, err := experience.EntryFee(ctx)
	if err != nil || fee.Int64() != 25 {
		t.Fatalf("unexpected entry fee %v (%v)", fee, err)
	}
	parent, err := experience.Company(ctx)
	if err != nil || parent != company.Address() {
		t.Fatalf("unexpected parent company %s (%v)", parent.Hex(), err)
	}
}

func TestExpiredTermsGrantIsRejected(t *testing.T) {
	f := newFixture(t)
	worldOwner := newKey(t)
	companyOwner := newKey(t)
	world := f.registerWorld(t, worldOwner)

	terms := companyTerms()
	expiration := signing.ExpirationAfter(f.clock, time.Minute)
	grant, err := signing.SignTerms(worldOwner, companyOwner.Address(), terms, expiration)
	if err != nil {
		t.Fatalf("SignTerms failed: %v", err)
	}
	f.ledger.Fund(companyOwner.Address(), big.NewInt(1_000_000))
	f.clock = f.clock.Add(2 * time.Minute)

	_, err = world.RegisterCompany(context.Background(), companyOwner, entity.RegisterCompanyRequest{
		Owner: companyOwner.Address(),
		Name:  "Late Co",
		Terms: terms,
		Grant: grant,
		Fee:   terms.Fee,
	})
	if !errors.Is(err, shared.ErrAuthorizationMismatch) {
		t.Fatalf("expected expired grant to be rejected, got %v", err)
	}
	if shared.ReasonOf(err) != "signature expired" {
		t.Fatalf("unexpected reason %q", shared.ReasonOf(err))
	}
}

func TestRemovableLifecycle(t *testing.T) {
	f := newFixture(t)
	worldOwner := newKey(t)
	companyOwner := newKey(t)
	world := f.registerWorld(t, worldOwner)
	company := f.registerCompany(t, world, worldOwner, companyOwner)
	ctx := context.Background()

	state, err := company.Lifecycle(ctx, f.clock)
	if err != nil || state != entity.LifecycleActive {
		t.Fatalf("expected active company, got %s (%v)", state, err)
	}
	if _, err := company.Deactivate(ctx, worldOwner, "unpaid"); !errors.Is(err, shared.ErrTransactionReverted) {
		t.Fatalf("expected deactivation within coverage to revert, got %v", err)
	}

	f.clock = f.clock.Add(31 * 24 * time.Hour)
	if state, _ := company.Lifecycle(ctx, f.clock); state != entity.LifecycleExpired {
		t.Fatalf("expected expired company, got %s", state)
	}
	outcome, err := company.Deactivate(ctx, worldOwner, "unpaid")
	if err != nil {
		t.Fatalf("Deactivate failed: %v", err)
	}
	if outcome.Events.Count("EntityDeactivated") != 1 {
		t.Fatalf("expected EntityDeactivated event, got %v", outcome.Events.Names())
	}
	active, err := company.IsActive(ctx)
	if err != nil || active {
		t.Fatalf("expected inactive company (%v)", err)
	}
	if _, err := company.Remove(ctx, worldOwner, "unpaid"); !errors.Is(err, shared.ErrTransactionReverted) {
		t.Fatalf("expected removal within grace to revert, got %v", err)
	}

	f.clock = f.clock.Add(8 * 24 * time.Hour)
	if state, _ := company.Lifecycle(ctx, f.clock); state != entity.LifecycleRemovable {
		t.Fatalf("expected removable company, got %s", state)
	}
	outcome, err = company.Remove(ctx, worldOwner, "unpaid")
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if outcome.Events.Count("RegistryRemovedEntity") != 1 {
		t.Fatalf("expected registry removal event, got %v", outcome.Events.Names())
	}
	if f.platform.EntityActive(company.Address()) {
		t.Fatalf("expected company removed")
	}
}

func TestSignableCapability(t *testing.T) {
	f := newFixture(t)
	worldOwner := newKey(t)
	delegate := newKey(t)
	world := f.registerWorld(t, worldOwner)
	ctx := context.Background()

	if _, err := world.AddSigners(ctx, worldOwner, []common.Address{delegate.Address()}); err != nil {
		t.Fatalf("AddSigners failed: %v", err)
	}
	isSigner, err := world.IsSigner(ctx, delegate.Address())
	if err != nil || !isSigner {
		t.Fatalf("expected delegate to be a signer (%v)", err)
	}
	hasRole, err := world.HasRole(ctx, entity.SignerRole, delegate.Address())
	if err != nil || !hasRole {
		t.Fatalf("expected delegate to hold the signer role (%v)", err)
	}
	admin, err := world.HasRole(ctx, entity.DefaultAdminRole, worldOwner.Address())
	if err != nil || !admin {
		t.Fatalf("expected owner to hold the admin role (%v)", err)
	}

	if _, err := world.AddSigners(ctx, delegate, []common.Address{delegate.Address()}); err == nil {
		t.Fatalf("expected non-owner to be refused")
	}
	if _, err := world.RemoveSigners(ctx, worldOwner, []common.Address{delegate.Address()}); err != nil {
		t.Fatalf("RemoveSigners failed: %v", err)
	}
	if isSigner, _ := world.IsSigner(ctx, delegate.Address()); isSigner {
		t.Fatalf("expected delegate removed")
	}
}

func TestUpgradeableCapability(t *testing.T) {
	f := newFixture(t)
	worldOwner := newKey(t)
	world := f.registerWorld(t, worldOwner)
	ctx := context.Background()

	outcome, err := world.Upgrade(ctx, worldOwner, []byte{0x01})
	if err != nil {
		t.Fatalf("Upgrade failed: %v", err)
	}
	event, ok := outcome.Events.First("EntityUpgraded")
	if !ok {
		t.Fatalf("expected EntityUpgraded event")
	}
	version, err := event.BigIntArg("version")
	if err != nil || version.Int64() != 2 {
		t.Fatalf("unexpected upgraded version %v (%v)", version, err)
	}
	current, err := world.Version(ctx)
	if err != nil || current.Int64() != 2 {
		t.Fatalf("unexpected version %v (%v)", current, err)
	}
}

func TestWritesRequireSigningCredential(t *testing.T) {
	f := newFixture(t)
	worldOwner := newKey(t)
	world := f.registerWorld(t, worldOwner)

	_, err := world.Upgrade(context.Background(), signing.ReadOnly(worldOwner.Address()), nil)
	if !errors.Is(err, shared.ErrSigningUnavailable) {
		t.Fatalf("expected signing_unavailable, got %v", err)
	}
}

func TestLifecycleAt(t *testing.T) {
	terms := companyTerms()
	expiration := big.NewInt(epoch.Unix())
	cases := []struct {
		offset time.Duration
		want   entity.Lifecycle
	}{
		{0, entity.LifecycleActive},
		{time.Second, entity.LifecycleExpired},
		{7 * 24 * time.Hour, entity.LifecycleExpired},
		{7*24*time.Hour + time.Second, entity.LifecycleRemovable},
	}
	for _, tc := range cases {
		got, err := entity.LifecycleAt(terms, expiration, epoch.Add(tc.offset))
		if err != nil {
			t.Fatalf("LifecycleAt failed: %v", err)
		}
		if got != tc.want {
			t.Fatalf("offset %s: got %s, want %s", tc.offset, got, tc.want)
		}
	}
	if _, err := entity.LifecycleAt(terms, nil, epoch); err == nil {
		t.Fatalf("expected error without expiration")
	}
}

func TestBinderRejectsZeroAddress(t *testing.T) {
	f := newFixture(t)
	if _, err := f.binder.Avatar(common.Address{}); err == nil {
		t.Fatalf("expected zero address to be refused")
	}
}
