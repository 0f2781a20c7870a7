// Package html provides a SectionSplitter for saved guide pages.
// Pages are converted to markdown and cut at every "###" heading; the page
// title comes from the site's content title element.
package html
