package score

import (
	"regexp"
	"strings"

	"companysift/internal/config"
	"companysift/internal/domain"
	"companysift/internal/filter"
)

// ukPostcode matches A9 9AA through AA9A 9AA forms.
var ukPostcode = regexp.MustCompile(`^[A-Z]{1,2}\d[A-Z\d]? ?\d[A-Z]{2}$`)

// Scorer computes a 0-100 confidence that a search hit is the company's own
// website, from three weighted features: name/domain similarity, TLD
// relevance, and provider rank.
type Scorer struct {
	weights    config.Weights
	unknownTLD float64
}

func NewScorer(weights config.Weights, unknownTLDScore float64) *Scorer {
	return &Scorer{weights: weights, unknownTLD: unknownTLDScore}
}

// Score computes the confidence for one hit.
func (s *Scorer) Score(c domain.Company, hit domain.SearchHit) domain.ScoredHit {
	d := domain.ScoreDetails{
		DomainMatch:  s.domainMatch(c.Name, hit.URL),
		TLDRelevance: s.tldRelevance(c, hit.URL),
		Position:     positionScore(hit.Position),
	}
	conf := 100 * (s.weights.DomainMatch*d.DomainMatch +
		s.weights.TLDRelevance*d.TLDRelevance +
		s.weights.Position*d.Position)
	if conf < 0 {
		conf = 0
	}
	if conf > 100 {
		conf = 100
	}
	return domain.ScoredHit{Hit: hit, Confidence: conf, Details: d}
}

// Best scores every hit and returns the highest-confidence one. Ties go to
// the earlier provider rank; ok is false for an empty slice.
func (s *Scorer) Best(c domain.Company, hits []domain.SearchHit) (best domain.ScoredHit, ok bool) {
	for _, h := range hits {
		sc := s.Score(c, h)
		if !ok || sc.Confidence > best.Confidence ||
			(sc.Confidence == best.Confidence && sc.Hit.Position < best.Hit.Position) {
			best = sc
			ok = true
		}
	}
	return best, ok
}

// domainMatch compares the normalized company name against the registrable
// domain label using edit-distance similarity. Exact match after
// suffix-stripping scores 1.0.
func (s *Scorer) domainMatch(name, rawURL string) float64 {
	label := DomainLabel(rawURL)
	if label == "" {
		return 0
	}
	normName := squash(NormalizeName(name))
	if normName == "" {
		return 0
	}
	label = squash(label)
	if normName == label {
		return 1.0
	}
	sim := similarity(normName, label)
	// containment still means a strong match: "acme" vs "acmegroupuk"
	if len(normName) >= 3 && len(label) >= 3 &&
		(strings.Contains(label, normName) || strings.Contains(normName, label)) {
		if sim < 0.8 {
			sim = 0.8
		}
	}
	return sim
}

// tldRelevance scores the hit's TLD class. UK TLDs rank highest for
// UK-registered companies; unrecognized TLDs get the configured constant.
func (s *Scorer) tldRelevance(c domain.Company, rawURL string) float64 {
	host := filter.HostOf(rawURL)
	if host == "" {
		return 0
	}

	isUK := ukPostcode.MatchString(strings.ToUpper(strings.TrimSpace(c.Postcode)))

	for _, tld := range []string{".co.uk", ".org.uk", ".me.uk", ".net.uk", ".uk"} {
		if strings.HasSuffix(host, tld) {
			if isUK {
				return 1.0
			}
			return 0.8
		}
	}
	if isUK {
		for _, tld := range []string{".us", ".ca", ".au", ".de", ".fr", ".jp", ".cn", ".in", ".ae", ".sg"} {
			if strings.HasSuffix(host, tld) {
				return 0.1
			}
		}
	}
	for _, tld := range []string{".com", ".org", ".net", ".io", ".biz"} {
		if strings.HasSuffix(host, tld) {
			if isUK {
				return 0.5
			}
			return 0.7
		}
	}
	return s.unknownTLD
}

// positionScore decays with provider rank: earlier results are likelier to
// be the real site. Strictly non-increasing in position.
func positionScore(position int) float64 {
	switch {
	case position <= 0:
		return 0
	case position == 1:
		return 1.0
	case position == 2:
		return 0.8
	case position <= 5:
		return 0.6
	case position <= 10:
		return 0.4
	default:
		v := 0.7 - float64(position)*0.05
		if v < 0 {
			v = 0
		}
		return v
	}
}

// DomainLabel extracts the registrable label of a URL's host:
// "www.acmewidgets.co.uk" -> "acmewidgets", "acme.com" -> "acme".
func DomainLabel(rawURL string) string {
	host := filter.HostOf(rawURL)
	if host == "" {
		return ""
	}
	parts := strings.Split(host, ".")
	if len(parts) < 2 {
		return host
	}
	// second-level public suffixes like co.uk / org.uk
	last, secondLast := parts[len(parts)-1], parts[len(parts)-2]
	if last == "uk" && (secondLast == "co" || secondLast == "org" || secondLast == "me" || secondLast == "net" || secondLast == "ac" || secondLast == "gov") {
		if len(parts) >= 3 {
			return parts[len(parts)-3]
		}
		return secondLast
	}
	return secondLast
}
