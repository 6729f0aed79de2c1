package contracts

import (
	"testing"
)

func TestABIComposesCapabilities(t *testing.T) {
	descriptor, err := ABI(KindCompany)
	if err != nil {
		t.Fatalf("ABI failed: %v", err)
	}

	for _, method := range []string{"addExperience", "delegateJumpForAvatar", "isSigner", "deactivate", "vectorAddress", "upgrade"} {
		if _, ok := descriptor.Methods[method]; !ok {
			t.Fatalf("expected method %s in company descriptor", method)
		}
	}
	for _, event := range []string{"CompanyAddedExperience", "EntityDeactivated", "EntityUpgraded"} {
		if _, ok := descriptor.Events[event]; !ok {
			t.Fatalf("expected event %s in company descriptor", event)
		}
	}
}

func TestABIKindsWithoutCapability(t *testing.T) {
	descriptor := MustABI(KindAvatar)
	if _, ok := descriptor.Methods["isSigner"]; ok {
		t.Fatalf("avatar descriptor must not carry signable methods")
	}
	if Has(KindAvatar, CapabilitySignable) {
		t.Fatalf("avatar must not report signable capability")
	}
	if !Has(KindWorld, CapabilityVectored) {
		t.Fatalf("world must report vectored capability")
	}
}

func TestABIEveryKindParses(t *testing.T) {
	for _, kind := range Kinds() {
		if _, err := ABI(kind); err != nil {
			t.Fatalf("kind %s failed to parse: %v", kind, err)
		}
	}
}

func TestABICachesDescriptor(t *testing.T) {
	first := MustABI(KindWorld)
	second := MustABI(KindWorld)
	if first.Events["WorldAddedCompany"].ID != second.Events["WorldAddedCompany"].ID {
		t.Fatalf("expected identical cached descriptors")
	}
}

func TestParseKind(t *testing.T) {
	if _, err := ParseKind("Spaceship"); err == nil {
		t.Fatalf("expected unknown kind error")
	}
	kind, err := ParseKind("ERC721Asset")
	if err != nil || kind != KindERC721Asset {
		t.Fatalf("unexpected ParseKind result: %s %v", kind, err)
	}
	if len(Capabilities("nope")) != 0 {
		t.Fatalf("expected no capabilities for unknown kind")
	}
}

func TestTransferTopicsCollideAcrossAssetKinds(t *testing.T) {
	erc20 := MustABI(KindERC20Asset).Events["Transfer"]
	erc721 := MustABI(KindERC721Asset).Events["Transfer"]
	if erc20.ID != erc721.ID {
		t.Fatalf("expected identical topic IDs for Transfer events")
	}
}
