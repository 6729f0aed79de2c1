package entity

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/vworld-labs/world-sdk-go/pkg/shared"
	"github.com/vworld-labs/world-sdk-go/pkg/signing"
)

var (
	_ Upgradeable = (*Registry)(nil)
	_ Signable    = (*Registrar)(nil)
	_ Signable    = (*World)(nil)
	_ Removable   = (*World)(nil)
	_ Vectored    = (*World)(nil)
	_ Upgradeable = (*World)(nil)
	_ Signable    = (*Company)(nil)
	_ Removable   = (*Company)(nil)
	_ Vectored    = (*Company)(nil)
	_ Removable   = (*Experience)(nil)
	_ Vectored    = (*Experience)(nil)
	_ Upgradeable = (*Avatar)(nil)
	_ Removable   = (*ERC20Asset)(nil)
	_ Removable   = (*ERC721Asset)(nil)
)

// Registry indexes registered entities by name and vector.
type Registry struct {
	upgradeable
	binding *binding
}

func (r *Registry) Address() common.Address { return r.binding.address() }

func (r *Registry) IsRegistered(ctx context.Context, entity common.Address) (bool, error) {
	return readBool(ctx, r.binding, "isRegistered", entity)
}

// GetByName resolves a registered entity. An unknown name is address_not_found.
func (r *Registry) GetByName(ctx context.Context, name string) (common.Address, error) {
	address, err := readAddress(ctx, r.binding, "getEntityByName", name)
	if err != nil {
		return common.Address{}, err
	}
	if address == (common.Address{}) {
		return common.Address{}, &shared.Error{
			Code:    shared.ErrorCodeAddressNotFound,
			Message: fmt.Sprintf("no entity named %q", name),
		}
	}
	return address, nil
}

// GetByVector resolves the entity occupying vector.
func (r *Registry) GetByVector(ctx context.Context, vector signing.VectorAddress) (common.Address, error) {
	if err := vector.Validate(); err != nil {
		return common.Address{}, err
	}
	address, err := readAddress(ctx, r.binding, "getEntityByVector", vector)
	if err != nil {
		return common.Address{}, err
	}
	if address == (common.Address{}) {
		return common.Address{}, &shared.Error{
			Code:    shared.ErrorCodeAddressNotFound,
			Message: fmt.Sprintf("no entity at vector %s", vector),
		}
	}
	return address, nil
}

// Registrar registers worlds.
type Registrar struct {
	signable
	binding *binding
}

func (r *Registrar) Address() common.Address { return r.binding.address() }

// RegisterWorld submits a world registration. The claim must be a vector
// signature for the request's vector scoped to its owner.
func (r *Registrar) RegisterWorld(ctx context.Context, cred signing.Credential, request RegisterWorldRequest) (Registration, error) {
	if err := request.Vector.Validate(); err != nil {
		return Registration{}, err
	}
	if request.Claim.Expiration == nil || len(request.Claim.Signature) != signing.SignatureLength {
		return Registration{}, fmt.Errorf("register world requires a signed vector claim")
	}
	outcome, err := r.binding.transact(
		ctx, cred, request.Fee, "registerWorld",
		request.Owner, request.Name, request.Vector, request.Claim.Expiration, request.Claim.Signature,
	)
	if err != nil {
		return Registration{Outcome: outcome}, err
	}
	return createdBy(outcome, "RegistrarAddedWorld", "world")
}

// World registers companies.
type World struct {
	signable
	removable
	vectored
	upgradeable
	binding *binding
}

func (w *World) Address() common.Address { return w.binding.address() }

// RegisterCompany submits a company registration under terms granted by the
// world's terms signer.
func (w *World) RegisterCompany(ctx context.Context, cred signing.Credential, request RegisterCompanyRequest) (Registration, error) {
	if err := request.Terms.Validate(); err != nil {
		return Registration{}, err
	}
	if request.Grant.Expiration == nil || len(request.Grant.Signature) != signing.SignatureLength {
		return Registration{}, fmt.Errorf("register company requires a signed terms grant")
	}
	outcome, err := w.binding.transact(
		ctx, cred, request.Fee, "registerCompany",
		request.Owner, request.Name, request.Terms, request.Grant.Expiration, request.Grant.Signature,
	)
	if err != nil {
		return Registration{Outcome: outcome}, err
	}
	return createdBy(outcome, "WorldAddedCompany", "company")
}

// Company owns experiences and the portals into them.
type Company struct {
	signable
	removable
	vectored
	upgradeable
	binding *binding
}

func (c *Company) Address() common.Address { return c.binding.address() }

func (c *Company) AddExperience(ctx context.Context, cred signing.Credential, request AddExperienceRequest) (ExperienceRegistration, error) {
	if request.Name == "" {
		return ExperienceRegistration{}, fmt.Errorf("experience name is required")
	}
	entryFee := request.EntryFee
	if entryFee == nil {
		entryFee = new(big.Int)
	}
	details := request.ConnectionDetails
	if details == nil {
		details = []byte{}
	}
	outcome, err := c.binding.transact(ctx, cred, nil, "addExperience", request.Name, entryFee, details)
	if err != nil {
		return ExperienceRegistration{Outcome: outcome}, err
	}

	event, ok := outcome.Events.First("CompanyAddedExperience")
	if !ok {
		return ExperienceRegistration{Outcome: outcome}, missingEvent("CompanyAddedExperience", outcome)
	}
	address, err := event.AddressArg("experience")
	if err != nil {
		return ExperienceRegistration{Outcome: outcome}, err
	}
	portalID, err := event.BigIntArg("portalId")
	if err != nil {
		return ExperienceRegistration{Outcome: outcome}, err
	}
	return ExperienceRegistration{Address: address, PortalID: portalID, Outcome: outcome}, nil
}

// DelegateJumpForAvatar submits a jump on avatar's behalf, paid by the
// company, under the avatar owner's signature.
func (c *Company) DelegateJumpForAvatar(
	ctx context.Context,
	cred signing.Credential,
	avatar common.Address,
	portalID *big.Int,
	agreedFee *big.Int,
	avatarOwnerSignature []byte,
) (Outcome, error) {
	return c.binding.transact(ctx, cred, nil, "delegateJumpForAvatar", avatar, portalID, agreedFee, avatarOwnerSignature)
}

// Experience is a location reachable through a portal.
type Experience struct {
	removable
	vectored
	upgradeable
	binding *binding
}

func (e *Experience) Address() common.Address { return e.binding.address() }

func (e *Experience) Name(ctx context.Context) (string, error) {
	return readString(ctx, e.binding, "name")
}

func (e *Experience) Company(ctx context.Context) (common.Address, error) {
	return readAddress(ctx, e.binding, "company")
}

func (e *Experience) PortalID(ctx context.Context) (*big.Int, error) {
	return readBigInt(ctx, e.binding, "portalId")
}

func (e *Experience) EntryFee(ctx context.Context) (*big.Int, error) {
	return readBigInt(ctx, e.binding, "entryFee")
}

// Avatar is a user presence that moves between experiences by jumping.
type Avatar struct {
	upgradeable
	binding *binding
}

func (a *Avatar) Address() common.Address { return a.binding.address() }

func (a *Avatar) Owner(ctx context.Context) (common.Address, error) {
	return readAddress(ctx, a.binding, "owner")
}

func (a *Avatar) Username(ctx context.Context) (string, error) {
	return readString(ctx, a.binding, "username")
}

// Location returns the experience the avatar currently occupies.
func (a *Avatar) Location(ctx context.Context) (common.Address, error) {
	return readAddress(ctx, a.binding, "location")
}

// CompanySigNonce is the direct-jump nonce for the (avatar, company) pair.
func (a *Avatar) CompanySigNonce(ctx context.Context, company common.Address) (*big.Int, error) {
	return readBigInt(ctx, a.binding, "getCompanySigNonce", company)
}

// AvatarSigNonce is the avatar-wide nonce for delegated jumps.
func (a *Avatar) AvatarSigNonce(ctx context.Context) (*big.Int, error) {
	return readBigInt(ctx, a.binding, "getAvatarSigNonce")
}

// Jump submits a direct jump through portalID, paying agreedFee as value.
func (a *Avatar) Jump(
	ctx context.Context,
	cred signing.Credential,
	portalID *big.Int,
	agreedFee *big.Int,
	destinationCompanySignature []byte,
) (Outcome, error) {
	return a.binding.transact(ctx, cred, agreedFee, "jump", portalID, agreedFee, destinationCompanySignature)
}

type ERC20Asset struct {
	removable
	upgradeable
	binding *binding
}

func (a *ERC20Asset) Address() common.Address { return a.binding.address() }

func (a *ERC20Asset) Symbol(ctx context.Context) (string, error) {
	return readString(ctx, a.binding, "symbol")
}

func (a *ERC20Asset) Decimals(ctx context.Context) (uint8, error) {
	var decimals uint8
	if err := a.binding.callInto(ctx, &decimals, "decimals"); err != nil {
		return 0, err
	}
	return decimals, nil
}

func (a *ERC20Asset) BalanceOf(ctx context.Context, account common.Address) (*big.Int, error) {
	return readBigInt(ctx, a.binding, "balanceOf", account)
}

func (a *ERC20Asset) Transfer(ctx context.Context, cred signing.Credential, to common.Address, value *big.Int) (Outcome, error) {
	return a.binding.transact(ctx, cred, nil, "transfer", to, value)
}

type ERC721Asset struct {
	removable
	upgradeable
	binding *binding
}

func (a *ERC721Asset) Address() common.Address { return a.binding.address() }

func (a *ERC721Asset) Symbol(ctx context.Context) (string, error) {
	return readString(ctx, a.binding, "symbol")
}

func (a *ERC721Asset) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	return readBigInt(ctx, a.binding, "balanceOf", owner)
}

func (a *ERC721Asset) OwnerOf(ctx context.Context, tokenID *big.Int) (common.Address, error) {
	return readAddress(ctx, a.binding, "ownerOf", tokenID)
}

func (a *ERC721Asset) TransferFrom(
	ctx context.Context,
	cred signing.Credential,
	from common.Address,
	to common.Address,
	tokenID *big.Int,
) (Outcome, error) {
	return a.binding.transact(ctx, cred, nil, "transferFrom", from, to, tokenID)
}

func createdBy(outcome Outcome, eventName string, addressArg string) (Registration, error) {
	event, ok := outcome.Events.First(eventName)
	if !ok {
		return Registration{Outcome: outcome}, missingEvent(eventName, outcome)
	}
	address, err := event.AddressArg(addressArg)
	if err != nil {
		return Registration{Outcome: outcome}, err
	}
	return Registration{Address: address, Outcome: outcome}, nil
}

func missingEvent(eventName string, outcome Outcome) error {
	return &shared.Error{
		Code:    shared.ErrorCodeDecodeFailure,
		Message: fmt.Sprintf("receipt %s has no %s event", outcome.Receipt.TxHash.Hex(), eventName),
	}
}
