package bhphoto

import (
	"strings"
	"unicode/utf8"

	"camwatch/lib/htmlutil"
	"camwatch/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

// ordered most-specific first, the first selector with hits wins.
// B&H swaps markup between frontend revisions, every entry here is a
// revision that shipped at some point.
var productSelectors = []string{
	`h3[data-selenium="miniProductPageProductName"]`,
	`a[data-selenium="miniProductPageProductNameLink"]`,
	`.sku-title h3`,
	`h3.bold_class`,
}

const (
	// the loose scan stops after this many containers to keep
	// recommendation rails and footer junk out
	maxScanContainers = 50
	// anything this short is navigation text, not a product name
	minNameLength = 5
)

func extractProducts(doc *goquery.Document) []string {
	names := selectorCascade(doc)
	if len(names) == 0 {
		names = looseScan(doc)
	}
	return dedupe(names)
}

func selectorCascade(doc *goquery.Document) []string {
	for _, selector := range productSelectors {
		sel := doc.Find(selector)
		if sel.Length() == 0 {
			continue
		}

		var names []string
		sel.Each(func(_ int, item *goquery.Selection) {
			name := htmlutil.CleanText(item.Text())
			if name != "" {
				names = append(names, name)
			}
		})
		// the first matching selector settles it even if every hit
		// cleaned down to nothing
		return names
	}
	return nil
}

// looseScan is the last resort when no known selector matches: walk
// product-ish containers and take the first title-ish child of each.
func looseScan(doc *goquery.Document) []string {
	containers := doc.Find("div, article").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return classContains(s, "product")
	})

	var names []string
	count := 0
	containers.EachWithBreak(func(_ int, container *goquery.Selection) bool {
		if count >= maxScanContainers {
			return false
		}
		count++

		title := container.Find("h3, h2, a").FilterFunction(func(_ int, s *goquery.Selection) bool {
			return classContains(s, "title", "name", "product")
		}).First()
		if title.Length() == 0 {
			return true
		}

		name := htmlutil.CleanText(title.Text())
		if utf8.RuneCountInString(name) > minNameLength {
			names = append(names, name)
		}
		return true
	})
	return names
}

func classContains(s *goquery.Selection, words ...string) bool {
	class, ok := s.Attr("class")
	if !ok {
		return false
	}
	class = strings.ToLower(class)
	for _, word := range words {
		if strings.Contains(class, word) {
			return true
		}
	}
	return false
}

// first spelling of a name wins, cosmetic variants collapse onto it
func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		key := textutil.Normalize(name)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, name)
	}
	return out
}
