package content

import (
	"bytes"
	"net/url"
	"strings"
	"unicode"

	"golang.org/x/net/html"

	"github.com/phishscan/phishscan/internal/feature"
	"github.com/phishscan/phishscan/internal/model"
)

// Features extracts content-based features from a fetched page and
// returns them keyed by canonical feature name. It returns nil when the
// page carries no parseable HTML, so callers fall back to the 0.0
// defaults and the check proceeds on lexical features alone.
func Features(page *model.Page) map[string]float64 {
	if page == nil || len(page.Body) == 0 || !page.IsHTML() {
		return nil
	}
	doc, err := html.Parse(bytes.NewReader(page.Body))
	if err != nil {
		return nil
	}
	return summarize(doc).features(page.URL)
}

// pageSummary accumulates the raw observations a single DOM walk
// produces. Feature math happens afterwards so each formula can see the
// whole page.
type pageSummary struct {
	titleSeen bool
	title     string

	// hrefs and srcs hold the raw attribute values of every element
	// carrying them, links and resources alike. Values are kept
	// unresolved: a relative reference stays relative and is counted
	// as pointing at the page's own site.
	hrefs []string
	srcs  []string

	forms    []formSummary
	favicons []string

	// headRefs holds the references carried by meta, script and link
	// elements, used to measure how much of the page skeleton is
	// served from foreign domains.
	headRefs []string

	frameSeen bool

	// scripts holds inline script bodies and event-handler attribute
	// values, scanned later for status-bar and pop-up tricks.
	scripts []string

	contextMenuBlocked bool
}

// formSummary captures what the analyzer needs to know about one form:
// where it submits and what its subtree contains.
type formSummary struct {
	action         string // trimmed and lowercased, "" when absent
	hasInput       bool
	hasImage       bool
	mentionsMailto bool
}

func summarize(doc *html.Node) *pageSummary {
	sum := &pageSummary{}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			sum.element(n)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return sum
}

func (s *pageSummary) element(n *html.Node) {
	for _, attr := range n.Attr {
		switch {
		case attr.Key == "href" && attr.Val != "":
			s.hrefs = append(s.hrefs, attr.Val)
		case attr.Key == "src" && attr.Val != "":
			s.srcs = append(s.srcs, attr.Val)
		case strings.HasPrefix(attr.Key, "on"):
			s.scripts = append(s.scripts, attr.Val)
			if attr.Key == "oncontextmenu" && strings.Contains(compact(attr.Val), "returnfalse") {
				s.contextMenuBlocked = true
			}
		}
	}

	switch n.Data {
	case "title":
		if !s.titleSeen && n.Namespace == "" {
			s.titleSeen = true
			s.title = strings.TrimSpace(textContent(n))
		}
	case "form":
		s.forms = append(s.forms, summarizeForm(n))
	case "link":
		href := getAttr(n, "href")
		if href != "" {
			s.headRefs = append(s.headRefs, href)
			if isIconRel(getAttr(n, "rel")) {
				s.favicons = append(s.favicons, href)
			}
		}
	case "script":
		if src := getAttr(n, "src"); src != "" {
			s.headRefs = append(s.headRefs, src)
		} else {
			s.scripts = append(s.scripts, textContent(n))
		}
	case "meta":
		if c := strings.TrimSpace(getAttr(n, "content")); looksLikeURL(c) {
			s.headRefs = append(s.headRefs, c)
		}
	case "iframe", "frame":
		s.frameSeen = true
	}
}

// summarizeForm inspects one form subtree. The action attribute is
// taken from the form element itself so that forms without an action
// never borrow one from a sibling.
func summarizeForm(n *html.Node) formSummary {
	form := formSummary{
		action: strings.ToLower(strings.TrimSpace(getAttr(n, "action"))),
	}
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode {
			switch node.Data {
			case "input":
				form.hasInput = true
			case "img":
				form.hasImage = true
			}
			for _, attr := range node.Attr {
				if strings.Contains(strings.ToLower(attr.Val), "mailto:") {
					form.mentionsMailto = true
				}
			}
		}
		if node.Type == html.TextNode && strings.Contains(strings.ToLower(node.Data), "mailto:") {
			form.mentionsMailto = true
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		walk(child)
	}
	return form
}

func (s *pageSummary) features(pageURL string) map[string]float64 {
	baseReg := registeredDomainOf(pageURL)
	feats := make(map[string]float64)

	totalLinks := len(s.hrefs)
	extLinks, nullSelf := 0, 0
	for _, href := range s.hrefs {
		if isExternal(href, baseReg) {
			extLinks++
		}
		if isNullSelf(href) {
			nullSelf++
		}
	}
	pctNull := percentage(nullSelf, totalLinks)
	feats["PctExtHyperlinks"] = percentage(extLinks, totalLinks)
	feats["PctNullSelfRedirectHyperlinks"] = pctNull
	feats["PctExtNullSelfRedirectHyperlinksRT"] = flag(pctNull > 50)

	totalSrc := len(s.srcs)
	extSrc := 0
	for _, src := range s.srcs {
		if isExternal(src, baseReg) {
			extSrc++
		}
	}
	pctExtSrc := percentage(extSrc, totalSrc)
	feats["PctExtResourceUrls"] = pctExtSrc
	feats["PctExtResourceUrlsRT"] = flag(pctExtSrc > 50)

	var insecure, relative, external, imgOnly, submitEmail bool
	pageHTTPS := strings.HasPrefix(strings.ToLower(pageURL), "https://")
	for _, form := range s.forms {
		action := form.action
		// An HTTPS page whose form posts over plain HTTP, or with no
		// action at all, leaks whatever the user types.
		if pageHTTPS && (action == "" || strings.HasPrefix(action, "http://")) {
			insecure = true
		}
		if isExternal(action, baseReg) {
			external = true
		}
		if isRelativeAction(action) {
			relative = true
		}
		if !form.hasInput && form.hasImage {
			imgOnly = true
		}
		if strings.HasPrefix(action, "mailto:") || form.mentionsMailto {
			submitEmail = true
		}
	}
	feats["InsecureForms"] = flag(insecure)
	feats["RelativeFormAction"] = flag(relative)
	feats["ExtFormAction"] = flag(external)
	feats["AbnormalFormAction"] = flag(external)
	feats["AbnormalExtFormActionR"] = flag(external)
	feats["ImagesOnlyInForm"] = flag(imgOnly)
	feats["SubmitInfoToEmail"] = flag(submitEmail)

	feats["IframeOrFrame"] = flag(s.frameSeen)

	extFavicon := false
	for _, href := range s.favicons {
		if isExternal(href, baseReg) {
			extFavicon = true
			break
		}
	}
	feats["ExtFavicon"] = flag(extFavicon)

	totalAll := totalLinks + totalSrc
	mismatch := totalAll > 0 && float64(extLinks+extSrc)/float64(totalAll) > 0.5
	feats["FrequentDomainNameMismatch"] = flag(mismatch)

	feats["MissingTitle"] = flag(!s.titleSeen || s.title == "")

	script := compact(strings.Join(s.scripts, "\n"))
	feats["FakeLinkInStatusBar"] = flag(strings.Contains(script, "window.status="))
	feats["RightClickDisabled"] = flag(s.contextMenuBlocked || strings.Contains(script, "event.button==2"))
	feats["PopUpWindow"] = flag(strings.Contains(script, "window.open("))

	extRefs := 0
	for _, ref := range s.headRefs {
		if isExternal(ref, baseReg) {
			extRefs++
		}
	}
	feats["ExtMetaScriptLinkRT"] = flag(percentage(extRefs, len(s.headRefs)) > 50)

	return feats
}

func registeredDomainOf(rawURL string) string {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	return feature.RegisteredDomain(parsed.Hostname())
}

// normalizeRef expands protocol-relative references such as
// //cdn.example.net/app.js so they parse as absolute URLs.
func normalizeRef(ref string) string {
	ref = strings.TrimSpace(ref)
	if strings.HasPrefix(ref, "//") {
		return "http:" + ref
	}
	return ref
}

// isExternal reports whether ref points at a different registered
// domain than the page's own. Relative references never count as
// external, and a reference whose domain cannot be determined is
// treated as internal.
func isExternal(ref, baseReg string) bool {
	ref = strings.ToLower(normalizeRef(ref))
	if !strings.HasPrefix(ref, "http://") && !strings.HasPrefix(ref, "https://") {
		return false
	}
	parsed, err := url.Parse(ref)
	if err != nil {
		return false
	}
	dom := feature.RegisteredDomain(parsed.Hostname())
	return dom != "" && dom != baseReg
}

// isNullSelf reports whether a link target keeps the user on the page
// without navigating anywhere.
func isNullSelf(ref string) bool {
	switch strings.ToLower(strings.TrimSpace(ref)) {
	case "", "#", "javascript:void(0)", "about:blank":
		return true
	}
	return false
}

// isRelativeAction reports whether a form action is a plain relative
// reference, meaning the form posts back to the page's own site.
func isRelativeAction(action string) bool {
	switch action {
	case "", "#", "about:blank":
		return false
	}
	if strings.HasPrefix(action, "javascript:") || strings.HasPrefix(action, "mailto:") {
		return false
	}
	return !isAbsoluteHTTP(action)
}

func isAbsoluteHTTP(ref string) bool {
	ref = strings.ToLower(normalizeRef(ref))
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

func isIconRel(rel string) bool {
	rel = strings.Join(strings.Fields(strings.ToLower(rel)), " ")
	return rel == "icon" || rel == "shortcut icon"
}

func looksLikeURL(s string) bool {
	s = strings.ToLower(s)
	return strings.HasPrefix(s, "http://") ||
		strings.HasPrefix(s, "https://") ||
		strings.HasPrefix(s, "//")
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return sb.String()
}

// compact strips whitespace and lowercases, so script checks survive
// arbitrary formatting.
func compact(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
}

func percentage(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return 100 * float64(part) / float64(total)
}

func flag(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
