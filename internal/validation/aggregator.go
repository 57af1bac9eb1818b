package validation

// Verdict is the combined outcome of the three checks.
type Verdict struct {
	RiskLevel     RiskLevel `json:"risk_level"`
	OverallPassed bool      `json:"overall_passed"`
}

// Aggregate combines the checks into a verdict. A failed audit raises the risk
// level but does not block listing. Sanctions always dominate.
//
// A check that has not run is neither a pass nor a match: an unknown sanctions
// check never yields high risk, but the project cannot pass overall until both
// the scam and sanctions checks are known. An unknown audit counts as
// unverified.
func Aggregate(scam, sanctions, audit CheckResult) Verdict {
	scamFlagged := scam.Known() && !scam.Effective()
	sanctionsDetected := sanctions.Known() && !sanctions.Effective()
	auditVerified := audit.Known() && audit.Effective()
	pending := !scam.Known() || !sanctions.Known()

	risk := RiskLow
	switch {
	case sanctionsDetected:
		risk = RiskHigh
	case scamFlagged || !auditVerified || pending:
		risk = RiskMedium
	}

	return Verdict{
		RiskLevel:     risk,
		OverallPassed: !pending && !scamFlagged && !sanctionsDetected,
	}
}
