// Package selector derives view data from session snapshots: archive tabs and
// search, dashboard picks, inbox tabs and day groups, and summary counts.
package selector

import "strings"

// Kind is the archive tab a category label belongs to.
type Kind string

const (
	KindAcademic    Kind = "academic"
	KindPractice    Kind = "practice"
	KindReward      Kind = "reward"
	KindCertificate Kind = "certificate"
	KindOther       Kind = "other"
)

// Kinds lists the tab kinds in display order.
var Kinds = []Kind{KindAcademic, KindPractice, KindReward, KindCertificate}

// Taxonomy maps exact category labels to kinds. Labels not listed are KindOther.
type Taxonomy map[string]Kind

// DefaultTaxonomy covers the labels the archive forms offer and their long forms.
var DefaultTaxonomy = Taxonomy{
	"学业":   KindAcademic,
	"学术":   KindAcademic,
	"学术活动": KindAcademic,
	"学业成绩": KindAcademic,
	"实践":   KindPractice,
	"社会实践": KindPractice,
	"奖惩":   KindReward,
	"奖惩记录": KindReward,
	"证书":   KindCertificate,
	"证书认证": KindCertificate,
}

// KindOf classifies a category label. Surrounding whitespace is ignored.
func (t Taxonomy) KindOf(category string) Kind {
	if kind, ok := t[strings.TrimSpace(category)]; ok {
		return kind
	}
	return KindOther
}

// Tab selects archive items by kind; TabAll matches everything.
type Tab string

const (
	TabAll         Tab = "all"
	TabAcademic    Tab = Tab(KindAcademic)
	TabPractice    Tab = Tab(KindPractice)
	TabReward      Tab = Tab(KindReward)
	TabCertificate Tab = Tab(KindCertificate)
)

var tabAliases = map[string]Tab{
	"":            TabAll,
	"all":         TabAll,
	"全部":          TabAll,
	"academic":    TabAcademic,
	"学业":          TabAcademic,
	"practice":    TabPractice,
	"实践":          TabPractice,
	"reward":      TabReward,
	"奖惩":          TabReward,
	"certificate": TabCertificate,
	"证书":          TabCertificate,
}

// ParseTab accepts English tab names (any case) or the Chinese tab labels.
func ParseTab(raw string) (Tab, bool) {
	tab, ok := tabAliases[strings.ToLower(strings.TrimSpace(raw))]
	return tab, ok
}

// Matches reports whether a category label belongs in the tab.
func (t Taxonomy) Matches(tab Tab, category string) bool {
	if tab == TabAll {
		return true
	}
	return t.KindOf(category) == Kind(tab)
}
