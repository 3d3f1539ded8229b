package classify

import (
	"context"
	"time"

	"github.com/de-tools/tenant-optimizer/pkg/models/domain"
	"github.com/rs/zerolog"
)

// Advice is what the enrichment call contributes to a finding: a better
// worded analysis and a priority/complexity framing. It never decides whether
// a resource is flagged; the rules already did that.
type Advice struct {
	Analysis            string
	Recommendation      string
	Priority            domain.Priority
	MigrationComplexity domain.Complexity
}

// Advisor produces advice for a rule-matched finding. Implementations are
// expected to be slow and unreliable; the engine treats every failure as a
// silent degradation to rule-only output.
type Advisor interface {
	Advise(ctx context.Context, finding domain.Finding) (*Advice, error)
}

type Engine struct {
	orphanRules      []OrphanRule
	deprecationRules []DeprecationRule
	advisor          Advisor
	advisorTimeout   time.Duration
	now              func() time.Time
}

type Option func(*Engine)

// WithAdvisor enables enrichment of deprecated findings.
func WithAdvisor(a Advisor, timeout time.Duration) Option {
	return func(e *Engine) {
		e.advisor = a
		e.advisorTimeout = timeout
	}
}

// WithClock overrides the retirement-proximity clock.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

func WithOrphanRules(rules []OrphanRule) Option {
	return func(e *Engine) {
		e.orphanRules = rules
	}
}

func WithDeprecationRules(rules []DeprecationRule) Option {
	return func(e *Engine) {
		e.deprecationRules = rules
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		orphanRules:      DefaultOrphanRules(),
		deprecationRules: DefaultDeprecationRules(),
		advisorTimeout:   10 * time.Second,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Classify labels every resource against the orphan rules first, then the
// deprecation rules. A resource matched as orphaned is never also reported
// deprecated in the same scan. Findings come back in discovery order.
func (e *Engine) Classify(ctx context.Context, resources []domain.Resource) domain.ScanResult {
	result := domain.ScanResult{
		Orphaned:   []domain.Finding{},
		Deprecated: []domain.Finding{},
	}

	for _, res := range resources {
		if finding, ok := e.matchOrphan(res); ok {
			result.Orphaned = append(result.Orphaned, finding)
			continue
		}
		if finding, ok := e.matchDeprecation(res); ok {
			result.Deprecated = append(result.Deprecated, e.enrich(ctx, finding))
		}
	}

	return result
}

func (e *Engine) matchOrphan(res domain.Resource) (domain.Finding, bool) {
	for _, rule := range e.orphanRules {
		if rule.ResourceType != res.Type || !rule.Matches(res) {
			continue
		}
		return domain.Finding{
			Resource:             res,
			Category:             domain.CategoryOrphaned,
			RuleID:               rule.ID,
			Analysis:             rule.Analysis(res),
			Recommendation:       rule.Recommendation,
			Priority:             rule.Priority,
			Risk:                 rule.Risk,
			EstimatedMonthlyCost: rule.MonthlyCost(res),
		}, true
	}
	return domain.Finding{}, false
}

func (e *Engine) matchDeprecation(res domain.Resource) (domain.Finding, bool) {
	for _, rule := range e.deprecationRules {
		if rule.ResourceType != res.Type || !rule.Matches(res) {
			continue
		}
		return domain.Finding{
			Resource:            res,
			Category:            domain.CategoryDeprecated,
			RuleID:              rule.ID,
			Analysis:            rule.Issue,
			Recommendation:      rule.Recommendation,
			Priority:            priorityFor(rule, e.now()),
			Risk:                rule.Risk,
			RetirementDate:      rule.RetirementDate,
			MigrationComplexity: rule.Complexity,
			UpgradeType:         rule.UpgradeType,
		}, true
	}
	return domain.Finding{}, false
}

// enrich asks the advisor for better framing. The call is advisory only:
// any error or timeout leaves the rule-derived finding untouched.
func (e *Engine) enrich(ctx context.Context, finding domain.Finding) domain.Finding {
	if e.advisor == nil {
		return finding
	}

	advisorCtx, cancel := context.WithTimeout(ctx, e.advisorTimeout)
	defer cancel()

	advice, err := e.advisor.Advise(advisorCtx, finding)
	if err != nil {
		zerolog.Ctx(ctx).Warn().
			Err(err).
			Str("resource", finding.Resource.ID).
			Str("rule", finding.RuleID).
			Msg("enrichment unavailable, falling back to rule-only finding")
		return finding
	}

	if advice.Analysis != "" {
		finding.Analysis = advice.Analysis
	}
	if advice.Recommendation != "" {
		finding.Recommendation = advice.Recommendation
	}
	if advice.Priority != "" {
		finding.Priority = advice.Priority
	}
	if advice.MigrationComplexity != "" {
		finding.MigrationComplexity = advice.MigrationComplexity
	}
	finding.Enriched = true
	return finding
}
