package jump

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/vworld-labs/world-sdk-go/pkg/entity"
	"github.com/vworld-labs/world-sdk-go/pkg/shared"
	"github.com/vworld-labs/world-sdk-go/pkg/signing"
)

const jumpEvent = "JumpSuccessful"

type Config struct {
	Logger *slog.Logger
}

// Coordinator runs the client half of the jump protocol: it reads the nonce
// for the chosen path, signs (portalId, agreedFee, nonce), submits, and reads
// the result from the receipt. Authorization is enforced by the ledger.
type Coordinator struct {
	logger *slog.Logger
}

func NewCoordinator(config Config) *Coordinator {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{logger: logger}
}

// AuthorizeDirect signs a direct jump for avatar into a portal owned by
// company. companySigner must be an authorized signer of company. The nonce
// is the avatar's counter for that company.
func (c *Coordinator) AuthorizeDirect(
	ctx context.Context,
	companySigner signing.Credential,
	avatar *entity.Avatar,
	company common.Address,
	portalID *big.Int,
	agreedFee *big.Int,
) (Request, error) {
	if _, err := signing.RequireSigner(companySigner); err != nil {
		return Request{}, err
	}
	nonce, err := avatar.CompanySigNonce(ctx, company)
	if err != nil {
		return Request{}, fmt.Errorf("read company nonce: %w", err)
	}
	authorization, err := signing.SignJump(companySigner, portalID, agreedFee, nonce)
	if err != nil {
		return Request{}, err
	}
	return Request{
		Path:          PathDirect,
		Avatar:        avatar.Address(),
		Company:       company,
		PortalID:      new(big.Int).Set(portalID),
		AgreedFee:     new(big.Int).Set(agreedFee),
		Nonce:         nonce,
		Authorization: authorization,
	}, nil
}

// AuthorizeDelegated signs a delegated jump as the avatar's owner. The nonce
// is the avatar-wide counter.
func (c *Coordinator) AuthorizeDelegated(
	ctx context.Context,
	ownerSigner signing.Credential,
	avatar *entity.Avatar,
	portalID *big.Int,
	agreedFee *big.Int,
) (Request, error) {
	if _, err := signing.RequireSigner(ownerSigner); err != nil {
		return Request{}, err
	}
	nonce, err := avatar.AvatarSigNonce(ctx)
	if err != nil {
		return Request{}, fmt.Errorf("read avatar nonce: %w", err)
	}
	authorization, err := signing.SignJump(ownerSigner, portalID, agreedFee, nonce)
	if err != nil {
		return Request{}, err
	}
	return Request{
		Path:          PathDelegated,
		Avatar:        avatar.Address(),
		PortalID:      new(big.Int).Set(portalID),
		AgreedFee:     new(big.Int).Set(agreedFee),
		Nonce:         nonce,
		Authorization: authorization,
	}, nil
}

// Jump submits a direct jump from the avatar owner's account, paying the
// agreed fee as value.
func (c *Coordinator) Jump(ctx context.Context, avatarCred signing.Credential, avatar *entity.Avatar, request Request) (Result, error) {
	attempt, err := c.prepare(request, PathDirect, avatar.Address())
	if err != nil {
		return Result{State: attempt.state, Path: PathDirect}, err
	}
	outcome, err := avatar.Jump(ctx, avatarCred, request.PortalID, request.AgreedFee, request.Authorization.Signature)
	return c.settle(attempt, request, avatar.Address(), outcome, err)
}

// DelegatedJump submits a jump for avatar from a company account. The company
// pays the fee.
func (c *Coordinator) DelegatedJump(
	ctx context.Context,
	companyCred signing.Credential,
	company *entity.Company,
	avatar *entity.Avatar,
	request Request,
) (Result, error) {
	attempt, err := c.prepare(request, PathDelegated, avatar.Address())
	if err != nil {
		return Result{State: attempt.state, Path: PathDelegated}, err
	}
	outcome, err := company.DelegateJumpForAvatar(
		ctx, companyCred, avatar.Address(), request.PortalID, request.AgreedFee, request.Authorization.Signature,
	)
	return c.settle(attempt, request, avatar.Address(), outcome, err)
}

// prepare checks a request locally before it is submitted. A request that
// fails here ends Rejected; one that passes is Authorized for submission.
func (c *Coordinator) prepare(request Request, path Path, avatar common.Address) (*progress, error) {
	attempt := newProgress()
	if err := attempt.advance(StateJumpRequested); err != nil {
		return attempt, err
	}
	if err := checkRequest(request, path, avatar); err != nil {
		if advanceErr := attempt.advance(StateRejected); advanceErr != nil {
			return attempt, advanceErr
		}
		return attempt, err
	}
	return attempt, attempt.advance(StateAuthorized)
}

func checkRequest(request Request, path Path, avatar common.Address) error {
	if err := request.Validate(); err != nil {
		return err
	}
	if request.Path != path {
		return fmt.Errorf("request is for a %s jump, not %s", request.Path, path)
	}
	if request.Avatar != avatar {
		return fmt.Errorf("request was signed for avatar %s, not %s", request.Avatar.Hex(), avatar.Hex())
	}
	return nil
}

func (c *Coordinator) settle(
	attempt *progress,
	request Request,
	avatar common.Address,
	outcome entity.Outcome,
	err error,
) (Result, error) {
	result := Result{
		State:    attempt.state,
		Path:     request.Path,
		PortalID: request.PortalID,
		Receipt:  outcome.Receipt,
		Events:   outcome.Events,
	}
	if err != nil {
		if rejected(err) {
			if advanceErr := attempt.advance(StateRejected); advanceErr != nil {
				return result, advanceErr
			}
			result.State = attempt.state
			c.logger.Warn(
				"jump rejected",
				"path", string(request.Path),
				"avatar", avatar.Hex(),
				"portal_id", request.PortalID.String(),
				"code", string(shared.CodeOf(err)),
				"reason", shared.ReasonOf(err),
			)
		}
		return result, err
	}

	occurrences := outcome.Events.FromEmitter(jumpEvent, avatar)
	if len(occurrences) == 0 {
		return result, &shared.Error{
			Code:    shared.ErrorCodeDecodeFailure,
			Message: fmt.Sprintf("receipt %s has no %s event from avatar %s", outcome.Receipt.TxHash.Hex(), jumpEvent, avatar.Hex()),
		}
	}
	event := occurrences[len(occurrences)-1]
	destination, err := event.AddressArg("destination")
	if err != nil {
		return result, err
	}
	fee, err := event.BigIntArg("fee")
	if err != nil {
		return result, err
	}
	if err := attempt.advance(StateJumpExecuted); err != nil {
		return result, err
	}

	result.State = attempt.state
	result.Fee = fee
	result.Destination = destination
	c.logger.Info(
		"jump executed",
		"path", string(request.Path),
		"avatar", avatar.Hex(),
		"portal_id", request.PortalID.String(),
		"destination", destination.Hex(),
		"fee", fee.String(),
	)
	return result, nil
}

func rejected(err error) bool {
	return errors.Is(err, shared.ErrAuthorizationMismatch) || errors.Is(err, shared.ErrTransactionReverted)
}
