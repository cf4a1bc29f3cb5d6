package intent_test

import (
	"testing"

	"github.com/meetvaani/vaani/internal/intent"
)

func TestClassifyBalanceQuery(t *testing.T) {
	decision := intent.Classify("What is my account balance?")

	if decision.Intent != intent.Balance {
		t.Fatalf("expected balance intent, got %s", decision.Intent)
	}
	if !decision.Known() {
		t.Fatal("balance query must be a known intent")
	}
	if decision.Confidence <= 0.6 {
		t.Fatalf("expected confidence above base, got %.2f", decision.Confidence)
	}
}

func TestClassifyRechargeQuery(t *testing.T) {
	decision := intent.Classify("I want to recharge with the 299 pack")
	if decision.Intent != intent.Recharge {
		t.Fatalf("expected recharge intent, got %s", decision.Intent)
	}
}

func TestClassifyPlanComparison(t *testing.T) {
	decision := intent.Classify("Can you compare the unlimited plans for me?")
	if decision.Intent != intent.Plan {
		t.Fatalf("expected plan intent, got %s", decision.Intent)
	}
}

func TestClassifyHindiQuery(t *testing.T) {
	decision := intent.Classify("मुझे रिचार्ज करना है")
	if decision.Intent != intent.Recharge {
		t.Fatalf("expected recharge intent for Hindi query, got %s", decision.Intent)
	}
}

func TestClassifyEmptyQuery(t *testing.T) {
	decision := intent.Classify("   ")
	if decision.Intent != intent.Unknown {
		t.Fatalf("expected unknown intent, got %s", decision.Intent)
	}
	if decision.Confidence != 0 {
		t.Fatalf("unknown intent must carry zero confidence, got %.2f", decision.Confidence)
	}
}

func TestClassifyUnmatchedQuery(t *testing.T) {
	decision := intent.Classify("the weather is quite pleasant today")
	if decision.Intent != intent.Unknown {
		t.Fatalf("expected unknown intent, got %s", decision.Intent)
	}
}

func TestClassifyConfidenceCapped(t *testing.T) {
	decision := intent.Classify("recharge recharge top up topup recharge karna prepaid pack recharge pannu रिचार्ज")
	if decision.Confidence > 0.95 {
		t.Fatalf("confidence must cap at 0.95, got %.2f", decision.Confidence)
	}
}
