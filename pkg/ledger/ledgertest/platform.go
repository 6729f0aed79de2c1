package ledgertest

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/vworld-labs/world-sdk-go/pkg/contracts"
	"github.com/vworld-labs/world-sdk-go/pkg/signing"
)

var (
	RegistryAddress  = common.HexToAddress("0x0000000000000000000000000000000000001000")
	RegistrarAddress = common.HexToAddress("0x0000000000000000000000000000000000001001")

	signerRole = [32]byte(crypto.Keccak256Hash([]byte("SIGNER_ROLE")))
)

const secondsPerDay = 24 * 60 * 60

type entityState struct {
	kind       contracts.Kind
	address    common.Address
	owner      common.Address
	parent     common.Address
	name       string
	signers    map[common.Address]bool
	vector     signing.VectorAddress
	terms      signing.RegistrationTerms
	expiration *big.Int
	active     bool
	removed    bool
	version    *big.Int
	children   int64
}

type experienceState struct {
	*entityState
	company  common.Address
	portalID *big.Int
	entryFee *big.Int
}

type avatarState struct {
	address       common.Address
	owner         common.Address
	username      string
	location      common.Address
	companyNonces map[common.Address]*big.Int
	avatarNonce   *big.Int
	version       *big.Int
}

// Platform simulates the registry, registrar and entity contracts on a
// Ledger, including signature recovery, nonce consumption and atomic fee
// settlement for jumps.
type Platform struct {
	ledger *Ledger

	// Now is the ledger clock used for expiration checks.
	Now func() time.Time

	entities    map[common.Address]*entityState
	experiences map[common.Address]*experienceState
	avatars     map[common.Address]*avatarState
	portals     map[string]*experienceState
	names       map[string]common.Address
	vectors     map[string]common.Address
	registrar   *entityState
	nextID      int64
	nextPortal  int64
}

// NewPlatform installs the registry and a registrar whose initial signer is
// vectorAuthority.
func NewPlatform(ledger *Ledger, vectorAuthority common.Address) *Platform {
	p := &Platform{
		ledger:      ledger,
		Now:         time.Now,
		entities:    map[common.Address]*entityState{},
		experiences: map[common.Address]*experienceState{},
		avatars:     map[common.Address]*avatarState{},
		portals:     map[string]*experienceState{},
		names:       map[string]common.Address{},
		vectors:     map[string]common.Address{},
	}
	p.registrar = &entityState{
		kind:    contracts.KindRegistrar,
		address: RegistrarAddress,
		owner:   vectorAuthority,
		signers: map[common.Address]bool{vectorAuthority: true},
		version: big.NewInt(1),
		active:  true,
	}
	p.entities[RegistrarAddress] = p.registrar

	ledger.Install(RegistryAddress, p.registryHandler())
	ledger.Install(RegistrarAddress, p.registrarHandler())
	return p
}

func (p *Platform) Ledger() *Ledger {
	return p.ledger
}

// CreateAvatar places an avatar owned by owner at location.
func (p *Platform) CreateAvatar(owner common.Address, username string, location common.Address) common.Address {
	p.ledger.mu.Lock()
	defer p.ledger.mu.Unlock()

	address := p.allocate()
	p.avatars[address] = &avatarState{
		address:       address,
		owner:         owner,
		username:      username,
		location:      location,
		companyNonces: map[common.Address]*big.Int{},
		avatarNonce:   new(big.Int),
		version:       big.NewInt(1),
	}
	p.ledger.handlers[address] = p.avatarHandler(address)
	return address
}

// AvatarLocation returns the avatar's current location.
func (p *Platform) AvatarLocation(avatar common.Address) common.Address {
	p.ledger.mu.Lock()
	defer p.ledger.mu.Unlock()
	state, ok := p.avatars[avatar]
	if !ok {
		return common.Address{}
	}
	return state.location
}

// EntityActive reports whether the entity at address is active.
func (p *Platform) EntityActive(address common.Address) bool {
	p.ledger.mu.Lock()
	defer p.ledger.mu.Unlock()
	state, ok := p.entities[address]
	return ok && state.active && !state.removed
}

func (p *Platform) now() *big.Int {
	return big.NewInt(p.Now().Unix())
}

func (p *Platform) allocate() common.Address {
	p.nextID++
	return common.BigToAddress(big.NewInt(0x20000 + p.nextID))
}

func (p *Platform) registryHandler() Handler {
	descriptor := contracts.MustABI(contracts.KindRegistry)
	return Dispatch(descriptor, map[string]Method{
		"isRegistered": func(_ *Call, args []any) ([]any, error) {
			state, ok := p.entities[args[0].(common.Address)]
			return []any{ok && !state.removed && state.kind != contracts.KindRegistrar}, nil
		},
		"getEntityByName": func(_ *Call, args []any) ([]any, error) {
			return []any{p.names[args[0].(string)]}, nil
		},
		"getEntityByVector": func(_ *Call, args []any) ([]any, error) {
			vector := abi.ConvertType(args[0], new(signing.VectorAddress)).(*signing.VectorAddress)
			return []any{p.vectors[vector.String()]}, nil
		},
		"version": func(_ *Call, _ []any) ([]any, error) {
			return []any{big.NewInt(1)}, nil
		},
		"upgrade": func(_ *Call, _ []any) ([]any, error) {
			return nil, Revert("registry is not upgradeable")
		},
	})
}

func (p *Platform) registrarHandler() Handler {
	descriptor := contracts.MustABI(contracts.KindRegistrar)
	methods := p.signableMethods(p.registrar)
	methods["registerWorld"] = func(call *Call, args []any) ([]any, error) {
		owner := args[0].(common.Address)
		name := args[1].(string)
		vector := *abi.ConvertType(args[2], new(signing.VectorAddress)).(*signing.VectorAddress)
		expiration := args[3].(*big.Int)
		signature := args[4].([]byte)

		if signing.Expired(expiration, p.Now()) {
			return nil, Revert("signature expired")
		}
		digest, err := signing.VectorDigest(vector, owner, expiration)
		if err != nil {
			return nil, Revert("invalid vector")
		}
		if !p.recoveredSigner(p.registrar, digest, signature) {
			return nil, Revert("invalid signature")
		}
		if err := p.checkUnique(name, vector); err != nil {
			return nil, err
		}

		address := p.allocate()
		world := &entityState{
			kind:       contracts.KindWorld,
			address:    address,
			owner:      owner,
			parent:     RegistrarAddress,
			name:       name,
			signers:    map[common.Address]bool{owner: true},
			vector:     vector,
			terms:      zeroTerms(),
			expiration: new(big.Int).Set(expiration),
			active:     true,
			version:    big.NewInt(1),
		}
		if err := p.emitCreated(call, contracts.KindRegistrar, "RegistrarAddedWorld", address, owner); err != nil {
			return nil, err
		}
		if err := p.emitRegistered(call, address, owner, name); err != nil {
			return nil, err
		}
		call.OnCommit(func() {
			p.commitEntity(world, p.worldHandler(world))
		})
		return nil, nil
	}
	return Dispatch(descriptor, methods)
}

func (p *Platform) worldHandler(world *entityState) Handler {
	descriptor := contracts.MustABI(contracts.KindWorld)
	methods := p.entityMethods(world)
	methods["registerCompany"] = func(call *Call, args []any) ([]any, error) {
		if err := p.requireActive(world); err != nil {
			return nil, err
		}
		owner := args[0].(common.Address)
		name := args[1].(string)
		terms := *abi.ConvertType(args[2], new(signing.RegistrationTerms)).(*signing.RegistrationTerms)
		expiration := args[3].(*big.Int)
		signature := args[4].([]byte)

		if signing.Expired(expiration, p.Now()) {
			return nil, Revert("signature expired")
		}
		digest, err := signing.TermsDigest(owner, terms, expiration)
		if err != nil {
			return nil, Revert("invalid terms")
		}
		if !p.recoveredSigner(world, digest, signature) {
			return nil, Revert("invalid signature")
		}
		if call.Value.Cmp(terms.Fee) < 0 {
			return nil, Revert("insufficient fee")
		}

		vector := world.vector
		vector.P = big.NewInt(world.children + 1)
		vector.PSub = new(big.Int)
		if err := p.checkUnique(name, vector); err != nil {
			return nil, err
		}

		address := p.allocate()
		coverage := new(big.Int).Mul(terms.CoveragePeriodDays, big.NewInt(secondsPerDay))
		company := &entityState{
			kind:       contracts.KindCompany,
			address:    address,
			owner:      owner,
			parent:     world.address,
			name:       name,
			signers:    map[common.Address]bool{owner: true},
			vector:     vector,
			terms:      terms,
			expiration: new(big.Int).Add(p.now(), coverage),
			active:     true,
			version:    big.NewInt(1),
		}
		if err := call.Emit(descriptor.Events["WorldAddedCompany"], address, owner, vector.P); err != nil {
			return nil, err
		}
		if err := p.emitRegistered(call, address, owner, name); err != nil {
			return nil, err
		}
		call.OnCommit(func() {
			world.children++
			p.commitEntity(company, p.companyHandler(company))
		})
		return nil, nil
	}
	return Dispatch(descriptor, methods)
}

func (p *Platform) companyHandler(company *entityState) Handler {
	descriptor := contracts.MustABI(contracts.KindCompany)
	avatarDescriptor := contracts.MustABI(contracts.KindAvatar)
	methods := p.entityMethods(company)

	methods["addExperience"] = func(call *Call, args []any) ([]any, error) {
		if err := p.requireActive(company); err != nil {
			return nil, err
		}
		if !company.signers[call.From] {
			return nil, Revert("caller is not an authorized signer")
		}
		name := args[0].(string)
		entryFee := args[1].(*big.Int)

		vector := company.vector
		vector.PSub = big.NewInt(company.children + 1)
		if err := p.checkUnique(name, vector); err != nil {
			return nil, err
		}

		address := p.allocate()
		portalID := big.NewInt(p.nextPortal + 1)
		experience := &experienceState{
			entityState: &entityState{
				kind:       contracts.KindExperience,
				address:    address,
				owner:      company.owner,
				parent:     company.address,
				name:       name,
				signers:    map[common.Address]bool{},
				vector:     vector,
				terms:      zeroTerms(),
				expiration: new(big.Int).Set(company.expiration),
				active:     true,
				version:    big.NewInt(1),
			},
			company:  company.address,
			portalID: portalID,
			entryFee: new(big.Int).Set(entryFee),
		}
		if err := call.Emit(descriptor.Events["CompanyAddedExperience"], address, portalID); err != nil {
			return nil, err
		}
		call.OnCommit(func() {
			company.children++
			p.nextPortal++
			p.experiences[address] = experience
			p.portals[portalID.String()] = experience
			p.commitEntity(experience.entityState, p.experienceHandler(experience))
		})
		return nil, nil
	}

	methods["delegateJumpForAvatar"] = func(call *Call, args []any) ([]any, error) {
		if err := p.requireActive(company); err != nil {
			return nil, err
		}
		if !company.signers[call.From] {
			return nil, Revert("caller is not an authorized signer")
		}
		avatar, ok := p.avatars[args[0].(common.Address)]
		if !ok {
			return nil, Revert("unknown avatar")
		}
		portalID := args[1].(*big.Int)
		agreedFee := args[2].(*big.Int)
		signature := args[3].([]byte)

		destination, err := p.destination(portalID, agreedFee)
		if err != nil {
			return nil, err
		}
		digest, err := signing.JumpDigest(portalID, agreedFee, avatar.avatarNonce)
		if err != nil {
			return nil, Revert("invalid jump")
		}
		if !signing.Verify(avatar.owner, digest, signature) {
			return nil, Revert("invalid signature")
		}
		if err := call.Transfer(company.address, destination.company, agreedFee); err != nil {
			return nil, err
		}
		if err := call.Emit(descriptor.Events["CompanyJumpedForAvatar"], avatar.address, portalID, agreedFee); err != nil {
			return nil, err
		}
		if err := call.EmitFrom(avatar.address, avatarDescriptor.Events["JumpSuccessful"], portalID, agreedFee, destination.address); err != nil {
			return nil, err
		}
		call.OnCommit(func() {
			avatar.avatarNonce = new(big.Int).Add(avatar.avatarNonce, big.NewInt(1))
			avatar.location = destination.address
		})
		return nil, nil
	}
	return Dispatch(descriptor, methods)
}

func (p *Platform) experienceHandler(experience *experienceState) Handler {
	descriptor := contracts.MustABI(contracts.KindExperience)
	methods := p.entityMethods(experience.entityState)
	methods["name"] = func(_ *Call, _ []any) ([]any, error) {
		return []any{experience.name}, nil
	}
	methods["company"] = func(_ *Call, _ []any) ([]any, error) {
		return []any{experience.company}, nil
	}
	methods["portalId"] = func(_ *Call, _ []any) ([]any, error) {
		return []any{experience.portalID}, nil
	}
	methods["entryFee"] = func(_ *Call, _ []any) ([]any, error) {
		return []any{experience.entryFee}, nil
	}
	return Dispatch(descriptor, methods)
}

func (p *Platform) avatarHandler(address common.Address) Handler {
	descriptor := contracts.MustABI(contracts.KindAvatar)
	avatar := p.avatars[address]
	return Dispatch(descriptor, map[string]Method{
		"owner": func(_ *Call, _ []any) ([]any, error) {
			return []any{avatar.owner}, nil
		},
		"username": func(_ *Call, _ []any) ([]any, error) {
			return []any{avatar.username}, nil
		},
		"location": func(_ *Call, _ []any) ([]any, error) {
			return []any{avatar.location}, nil
		},
		"getCompanySigNonce": func(_ *Call, args []any) ([]any, error) {
			return []any{companyNonce(avatar, args[0].(common.Address))}, nil
		},
		"getAvatarSigNonce": func(_ *Call, _ []any) ([]any, error) {
			return []any{new(big.Int).Set(avatar.avatarNonce)}, nil
		},
		"version": func(_ *Call, _ []any) ([]any, error) {
			return []any{avatar.version}, nil
		},
		"upgrade": func(call *Call, _ []any) ([]any, error) {
			if call.From != avatar.owner {
				return nil, Revert("caller is not the owner")
			}
			call.OnCommit(func() {
				avatar.version = new(big.Int).Add(avatar.version, big.NewInt(1))
			})
			return nil, nil
		},
		"jump": func(call *Call, args []any) ([]any, error) {
			if call.From != avatar.owner {
				return nil, Revert("caller is not the owner")
			}
			portalID := args[0].(*big.Int)
			agreedFee := args[1].(*big.Int)
			signature := args[2].([]byte)

			if call.Value.Cmp(agreedFee) != 0 {
				return nil, Revert("value does not match agreed fee")
			}
			destination, err := p.destination(portalID, agreedFee)
			if err != nil {
				return nil, err
			}
			company := p.entities[destination.company]
			nonce := companyNonce(avatar, company.address)
			digest, err := signing.JumpDigest(portalID, agreedFee, nonce)
			if err != nil {
				return nil, Revert("invalid jump")
			}
			if !p.recoveredSigner(company, digest, signature) {
				return nil, Revert("invalid signature")
			}
			if err := call.Transfer(avatar.address, company.address, agreedFee); err != nil {
				return nil, err
			}
			if err := call.Emit(descriptor.Events["JumpSuccessful"], portalID, agreedFee, destination.address); err != nil {
				return nil, err
			}
			call.OnCommit(func() {
				avatar.companyNonces[company.address] = new(big.Int).Add(nonce, big.NewInt(1))
				avatar.location = destination.address
			})
			return nil, nil
		},
	})
}

// entityMethods implements the signable, removable, vectored and upgradeable
// surfaces shared by worlds, companies and experiences.
func (p *Platform) entityMethods(state *entityState) map[string]Method {
	methods := p.signableMethods(state)
	methods["isActive"] = func(_ *Call, _ []any) ([]any, error) {
		return []any{state.active && !state.removed}, nil
	}
	methods["getTerms"] = func(_ *Call, _ []any) ([]any, error) {
		return []any{state.terms.Fee, state.terms.CoveragePeriodDays, state.terms.GracePeriodDays}, nil
	}
	methods["termsExpiration"] = func(_ *Call, _ []any) ([]any, error) {
		return []any{state.expiration}, nil
	}
	methods["deactivate"] = func(call *Call, args []any) ([]any, error) {
		if err := p.requireParentOwner(call, state); err != nil {
			return nil, err
		}
		if !state.active {
			return nil, Revert("entity is not active")
		}
		if !signing.Expired(state.expiration, p.Now()) {
			return nil, Revert("entity is within its coverage period")
		}
		if err := call.Emit(eventOf(state.kind, "EntityDeactivated"), call.From, args[0].(string)); err != nil {
			return nil, err
		}
		call.OnCommit(func() { state.active = false })
		return nil, nil
	}
	methods["reactivate"] = func(call *Call, _ []any) ([]any, error) {
		if call.From != state.owner {
			return nil, Revert("caller is not the owner")
		}
		if state.active || state.removed {
			return nil, Revert("entity cannot be reactivated")
		}
		if call.Value.Cmp(state.terms.Fee) < 0 {
			return nil, Revert("insufficient fee")
		}
		if err := call.Emit(eventOf(state.kind, "EntityReactivated"), call.From); err != nil {
			return nil, err
		}
		coverage := new(big.Int).Mul(state.terms.CoveragePeriodDays, big.NewInt(secondsPerDay))
		now := p.now()
		call.OnCommit(func() {
			state.active = true
			state.expiration = new(big.Int).Add(now, coverage)
		})
		return nil, nil
	}
	methods["remove"] = func(call *Call, args []any) ([]any, error) {
		if err := p.requireParentOwner(call, state); err != nil {
			return nil, err
		}
		grace := new(big.Int).Mul(state.terms.GracePeriodDays, big.NewInt(secondsPerDay))
		if !signing.Expired(new(big.Int).Add(state.expiration, grace), p.Now()) {
			return nil, Revert("grace period has not elapsed")
		}
		if err := call.Emit(eventOf(state.kind, "EntityRemoved"), call.From, args[0].(string)); err != nil {
			return nil, err
		}
		if err := call.EmitFrom(RegistryAddress, eventOf(contracts.KindRegistry, "RegistryRemovedEntity"), state.address); err != nil {
			return nil, err
		}
		call.OnCommit(func() {
			state.removed = true
			state.active = false
			delete(p.names, state.name)
			delete(p.vectors, state.vector.String())
		})
		return nil, nil
	}
	methods["vectorAddress"] = func(_ *Call, _ []any) ([]any, error) {
		v := state.vector
		return []any{v.X, v.Y, v.Z, v.T, v.P, v.PSub}, nil
	}
	methods["version"] = func(_ *Call, _ []any) ([]any, error) {
		return []any{state.version}, nil
	}
	methods["upgrade"] = func(call *Call, _ []any) ([]any, error) {
		if call.From != state.owner {
			return nil, Revert("caller is not the owner")
		}
		next := new(big.Int).Add(state.version, big.NewInt(1))
		if err := call.Emit(eventOf(state.kind, "EntityUpgraded"), state.address, next); err != nil {
			return nil, err
		}
		call.OnCommit(func() { state.version = next })
		return nil, nil
	}
	return methods
}

func (p *Platform) signableMethods(state *entityState) map[string]Method {
	return map[string]Method{
		"isSigner": func(_ *Call, args []any) ([]any, error) {
			return []any{state.signers[args[0].(common.Address)]}, nil
		},
		"hasRole": func(_ *Call, args []any) ([]any, error) {
			role := args[0].([32]byte)
			account := args[1].(common.Address)
			switch role {
			case [32]byte{}:
				return []any{account == state.owner}, nil
			case signerRole:
				return []any{state.signers[account]}, nil
			default:
				return []any{false}, nil
			}
		},
		"addSigners": func(call *Call, args []any) ([]any, error) {
			if call.From != state.owner {
				return nil, Revert("caller is not the owner")
			}
			signers := args[0].([]common.Address)
			if err := call.Emit(eventOf(state.kind, "SignersAdded"), signers); err != nil {
				return nil, err
			}
			call.OnCommit(func() {
				for _, signer := range signers {
					state.signers[signer] = true
				}
			})
			return nil, nil
		},
		"removeSigners": func(call *Call, args []any) ([]any, error) {
			if call.From != state.owner {
				return nil, Revert("caller is not the owner")
			}
			signers := args[0].([]common.Address)
			if err := call.Emit(eventOf(state.kind, "SignersRemoved"), signers); err != nil {
				return nil, err
			}
			call.OnCommit(func() {
				for _, signer := range signers {
					delete(state.signers, signer)
				}
			})
			return nil, nil
		},
	}
}

func (p *Platform) destination(portalID *big.Int, agreedFee *big.Int) (*experienceState, error) {
	destination, ok := p.portals[portalID.String()]
	if !ok {
		return nil, Revert("unknown portal")
	}
	if !destination.active || destination.removed {
		return nil, Revert("destination is not active")
	}
	if agreedFee.Cmp(destination.entryFee) < 0 {
		return nil, Revert("agreed fee is below the entry fee")
	}
	return destination, nil
}

func (p *Platform) recoveredSigner(state *entityState, digest common.Hash, signature []byte) bool {
	recovered, err := signing.RecoverSigner(digest, signature)
	if err != nil {
		return false
	}
	return state.signers[recovered]
}

func (p *Platform) requireActive(state *entityState) error {
	if !state.active || state.removed {
		return Revert("entity is not active")
	}
	return nil
}

func (p *Platform) requireParentOwner(call *Call, state *entityState) error {
	parent, ok := p.entities[state.parent]
	if !ok || call.From != parent.owner {
		return Revert("caller is not the registering entity owner")
	}
	return nil
}

func (p *Platform) checkUnique(name string, vector signing.VectorAddress) error {
	if name == "" {
		return Revert("name is required")
	}
	if _, taken := p.names[name]; taken {
		return Revert("name already registered")
	}
	if _, taken := p.vectors[vector.String()]; taken {
		return Revert("vector already registered")
	}
	return nil
}

func (p *Platform) emitCreated(call *Call, kind contracts.Kind, event string, args ...any) error {
	return call.Emit(eventOf(kind, event), args...)
}

func (p *Platform) emitRegistered(call *Call, entity common.Address, owner common.Address, name string) error {
	return call.EmitFrom(RegistryAddress, eventOf(contracts.KindRegistry, "RegistryAddedEntity"), entity, owner, name)
}

func (p *Platform) commitEntity(state *entityState, handler Handler) {
	p.entities[state.address] = state
	p.names[state.name] = state.address
	p.vectors[state.vector.String()] = state.address
	p.ledger.handlers[state.address] = handler
}

func eventOf(kind contracts.Kind, name string) abi.Event {
	event, ok := contracts.MustABI(kind).Events[name]
	if !ok {
		panic(fmt.Sprintf("%s has no event %s", kind, name))
	}
	return event
}

func companyNonce(avatar *avatarState, company common.Address) *big.Int {
	nonce, ok := avatar.companyNonces[company]
	if !ok {
		return new(big.Int)
	}
	return new(big.Int).Set(nonce)
}

func zeroTerms() signing.RegistrationTerms {
	return signing.RegistrationTerms{
		Fee:                new(big.Int),
		CoveragePeriodDays: new(big.Int),
		GracePeriodDays:    new(big.Int),
	}
}

// CreateWorld registers a world directly, bypassing the registrar.
func (p *Platform) CreateWorld(owner common.Address, name string, vector signing.VectorAddress, expiration *big.Int) common.Address {
	p.ledger.mu.Lock()
	defer p.ledger.mu.Unlock()

	world := &entityState{
		kind:       contracts.KindWorld,
		address:    p.allocate(),
		owner:      owner,
		parent:     RegistrarAddress,
		name:       name,
		signers:    map[common.Address]bool{owner: true},
		vector:     vector,
		terms:      zeroTerms(),
		expiration: new(big.Int).Set(expiration),
		active:     true,
		version:    big.NewInt(1),
	}
	p.commitEntity(world, p.worldHandler(world))
	return world.address
}

// CreateCompany registers a company under world directly.
func (p *Platform) CreateCompany(world common.Address, owner common.Address, name string, terms signing.RegistrationTerms) common.Address {
	p.ledger.mu.Lock()
	defer p.ledger.mu.Unlock()

	parent := p.entities[world]
	parent.children++
	vector := parent.vector
	vector.P = big.NewInt(parent.children)
	vector.PSub = new(big.Int)
	coverage := new(big.Int).Mul(terms.CoveragePeriodDays, big.NewInt(secondsPerDay))

	company := &entityState{
		kind:       contracts.KindCompany,
		address:    p.allocate(),
		owner:      owner,
		parent:     world,
		name:       name,
		signers:    map[common.Address]bool{owner: true},
		vector:     vector,
		terms:      terms,
		expiration: new(big.Int).Add(p.now(), coverage),
		active:     true,
		version:    big.NewInt(1),
	}
	p.commitEntity(company, p.companyHandler(company))
	return company.address
}

// CreateExperience adds an experience to company directly and returns its
// address and portal.
func (p *Platform) CreateExperience(company common.Address, name string, entryFee *big.Int) (common.Address, *big.Int) {
	p.ledger.mu.Lock()
	defer p.ledger.mu.Unlock()

	parent := p.entities[company]
	parent.children++
	p.nextPortal++
	vector := parent.vector
	vector.PSub = big.NewInt(parent.children)
	portalID := big.NewInt(p.nextPortal)

	experience := &experienceState{
		entityState: &entityState{
			kind:       contracts.KindExperience,
			address:    p.allocate(),
			owner:      parent.owner,
			parent:     company,
			name:       name,
			signers:    map[common.Address]bool{},
			vector:     vector,
			terms:      zeroTerms(),
			expiration: new(big.Int).Set(parent.expiration),
			active:     true,
			version:    big.NewInt(1),
		},
		company:  company,
		portalID: portalID,
		entryFee: new(big.Int).Set(entryFee),
	}
	p.experiences[experience.address] = experience
	p.portals[portalID.String()] = experience
	p.commitEntity(experience.entityState, p.experienceHandler(experience))
	return experience.address, new(big.Int).Set(portalID)
}
