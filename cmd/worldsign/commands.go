package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/pflag"

	"github.com/vworld-labs/world-sdk-go/pkg/signing"
)

type output struct {
	Kind       string `json:"kind"`
	Digest     string `json:"digest"`
	Signer     string `json:"signer"`
	Signature  string `json:"signature,omitempty"`
	Expiration string `json:"expiration,omitempty"`
}

type expirationFlags struct {
	at        int64
	expiresIn time.Duration
}

func (e *expirationFlags) add(flagSet *pflag.FlagSet) {
	flagSet.Int64Var(&e.at, "expiration", 0, "absolute expiration as unix seconds")
	flagSet.DurationVar(&e.expiresIn, "expires-in", time.Hour, "expiration relative to now, ignored when --expiration is set")
}

func (e *expirationFlags) value(now time.Time) *big.Int {
	if e.at > 0 {
		return big.NewInt(e.at)
	}
	return signing.ExpirationAfter(now, e.expiresIn)
}

func runTerms(args []string, stdout io.Writer) error {
	var (
		keys       keyFlags
		expiration expirationFlags
		owner      string
		fee        string
		coverage   string
		grace      string
		asJSON     bool
	)
	flagSet := newFlagSet("terms")
	keys.add(flagSet)
	flagSet.StringVar(&owner, "owner", "", "address the terms are granted to")
	flagSet.StringVar(&fee, "fee", "0", "registration fee in the ledger's smallest unit")
	flagSet.StringVar(&coverage, "coverage-days", "365", "coverage period in days")
	flagSet.StringVar(&grace, "grace-days", "30", "grace period in days")
	expiration.add(flagSet)
	flagSet.BoolVar(&asJSON, "json", false, "print JSON")
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	ownerAddress, err := parseAddress("owner", owner)
	if err != nil {
		return err
	}
	terms := signing.RegistrationTerms{}
	if terms.Fee, err = parseBig("fee", fee); err != nil {
		return err
	}
	if terms.CoveragePeriodDays, err = parseBig("coverage-days", coverage); err != nil {
		return err
	}
	if terms.GracePeriodDays, err = parseBig("grace-days", grace); err != nil {
		return err
	}
	signer, err := keys.signer()
	if err != nil {
		return err
	}

	authorization, err := signing.SignTerms(signer, ownerAddress, terms, expiration.value(time.Now()))
	if err != nil {
		return err
	}
	return printAuthorization(stdout, "terms", authorization, asJSON)
}

func runVector(args []string, stdout io.Writer) error {
	var (
		keys       keyFlags
		expiration expirationFlags
		owner      string
		x, y, z    string
		t, p, pSub string
		asJSON     bool
	)
	flagSet := newFlagSet("vector")
	keys.add(flagSet)
	flagSet.StringVar(&owner, "owner", "", "address the claim is scoped to")
	flagSet.StringVar(&x, "x", "", "x coordinate")
	flagSet.StringVar(&y, "y", "", "y coordinate")
	flagSet.StringVar(&z, "z", "", "z coordinate")
	flagSet.StringVar(&t, "t", "0", "time coordinate")
	flagSet.StringVar(&p, "p", "0", "company index")
	flagSet.StringVar(&pSub, "p-sub", "0", "experience index")
	expiration.add(flagSet)
	flagSet.BoolVar(&asJSON, "json", false, "print JSON")
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	ownerAddress, err := parseAddress("owner", owner)
	if err != nil {
		return err
	}
	vector := signing.VectorAddress{X: x, Y: y, Z: z}
	if vector.T, err = parseBig("t", t); err != nil {
		return err
	}
	if vector.P, err = parseBig("p", p); err != nil {
		return err
	}
	if vector.PSub, err = parseBig("p-sub", pSub); err != nil {
		return err
	}
	if err := vector.Validate(); err != nil {
		return err
	}
	signer, err := keys.signer()
	if err != nil {
		return err
	}

	authorization, err := signing.SignVector(signer, vector, ownerAddress, expiration.value(time.Now()))
	if err != nil {
		return err
	}
	return printAuthorization(stdout, "vector", authorization, asJSON)
}

func runJump(args []string, stdout io.Writer) error {
	var (
		keys   keyFlags
		portal string
		fee    string
		nonce  string
		asJSON bool
	)
	flagSet := newFlagSet("jump")
	keys.add(flagSet)
	flagSet.StringVar(&portal, "portal", "", "destination portal id")
	flagSet.StringVar(&fee, "fee", "0", "agreed fee")
	flagSet.StringVar(&nonce, "nonce", "", "nonce read from the avatar contract")
	flagSet.BoolVar(&asJSON, "json", false, "print JSON")
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	portalID, err := parseBig("portal", portal)
	if err != nil {
		return err
	}
	agreedFee, err := parseBig("fee", fee)
	if err != nil {
		return err
	}
	nonceValue, err := parseBig("nonce", nonce)
	if err != nil {
		return err
	}
	signer, err := keys.signer()
	if err != nil {
		return err
	}

	authorization, err := signing.SignJump(signer, portalID, agreedFee, nonceValue)
	if err != nil {
		return err
	}
	return printAuthorization(stdout, "jump", authorization, asJSON)
}

func runRecover(args []string, stdout io.Writer) error {
	var (
		digest    string
		signature string
		asJSON    bool
	)
	flagSet := newFlagSet("recover")
	flagSet.StringVar(&digest, "digest", "", "32-byte payload digest")
	flagSet.StringVar(&signature, "signature", "", "65-byte signature")
	flagSet.BoolVar(&asJSON, "json", false, "print JSON")
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	digestBytes, err := hexutil.Decode(digest)
	if err != nil || len(digestBytes) != common.HashLength {
		return fmt.Errorf("--digest must be 32 hex-encoded bytes")
	}
	signatureBytes, err := hexutil.Decode(signature)
	if err != nil {
		return fmt.Errorf("--signature: %w", err)
	}
	recovered, err := signing.RecoverSigner(common.BytesToHash(digestBytes), signatureBytes)
	if err != nil {
		return err
	}
	result := output{Kind: "recover", Digest: hexutil.Encode(digestBytes), Signer: recovered.Hex()}
	return writeOutput(stdout, result, asJSON)
}

func printAuthorization(w io.Writer, kind string, authorization signing.SignedAuthorization, asJSON bool) error {
	result := output{
		Kind:      kind,
		Digest:    authorization.Digest.Hex(),
		Signer:    authorization.Signer.Hex(),
		Signature: hexutil.Encode(authorization.Signature),
	}
	if authorization.Expiration != nil {
		result.Expiration = authorization.Expiration.String()
	}
	return writeOutput(w, result, asJSON)
}

func writeOutput(w io.Writer, result output, asJSON bool) error {
	if asJSON {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	}
	fmt.Fprintf(w, "digest=%s\n", result.Digest)
	fmt.Fprintf(w, "signer=%s\n", result.Signer)
	if result.Signature != "" {
		fmt.Fprintf(w, "signature=%s\n", result.Signature)
	}
	if result.Expiration != "" {
		fmt.Fprintf(w, "expiration=%s\n", result.Expiration)
	}
	return nil
}

func parseAddress(name string, value string) (common.Address, error) {
	if !common.IsHexAddress(value) {
		return common.Address{}, fmt.Errorf("--%s must be a hex address", name)
	}
	return common.HexToAddress(value), nil
}

func parseBig(name string, value string) (*big.Int, error) {
	parsed, ok := new(big.Int).SetString(value, 0)
	if !ok || parsed.Sign() < 0 {
		return nil, fmt.Errorf("--%s must be a non-negative integer", name)
	}
	return parsed, nil
}
