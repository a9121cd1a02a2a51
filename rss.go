package cosmicblog

import (
	"encoding/xml"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/cosmicblog/cosmic"
	"github.com/eringen/cosmicblog/views"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Language    string    `xml:"language,omitempty"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	Description string   `xml:"description"`
	Author      string   `xml:"author,omitempty"`
	Categories  []string `xml:"category"`
	PubDate     string   `xml:"pubDate,omitempty"`
	GUID        string   `xml:"guid"`
}

// pubDateLayouts are the publication date forms accepted in feeds.
var pubDateLayouts = []string{"2006-01-02", time.RFC3339, time.RFC3339Nano}

func rssDate(p cosmic.Post) string {
	for _, s := range []string{p.Metadata.PublicationDate, p.CreatedAt} {
		for _, layout := range pubDateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.Format(time.RFC1123Z)
			}
		}
	}
	return ""
}

func (a *App) renderRSS(c echo.Context, posts []cosmic.Post) error {
	base := a.Config.URL
	items := make([]rssItem, 0, len(posts))
	for _, p := range posts {
		postURL := BuildURL(base, "posts", p.Slug)
		item := rssItem{
			Title:       p.Title,
			Link:        postURL,
			Description: views.PostExcerpt(p),
			PubDate:     rssDate(p),
			GUID:        postURL,
		}
		if p.Metadata.Author != nil {
			item.Author = p.Metadata.Author.Title
		}
		for _, cat := range p.Metadata.Categories {
			item.Categories = append(item.Categories, cat.Title)
		}
		items = append(items, item)
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       a.Config.Name,
			Link:        BuildURL(base),
			Description: a.Config.Description,
			Language:    localeLanguage(a.Config.Locale),
			Items:       items,
		},
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(feed)
}

// localeLanguage turns "en_US" into the RSS language code "en-us".
func localeLanguage(locale string) string {
	return strings.ToLower(strings.ReplaceAll(locale, "_", "-"))
}
