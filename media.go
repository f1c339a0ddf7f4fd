package twitter

import (
	"strings"

	"github.com/tidwall/gjson"
)

// mediaSize is one named rendition of a media item.
type mediaSize struct {
	name   string
	width  int
	height int
}

func (s mediaSize) area() int { return s.width * s.height }

// extractMedia returns the media of a tweet's legacy node, or nil when it
// has none.
func extractMedia(legacy gjson.Result) []Media {
	items := legacy.Get("extended_entities.media").Array()
	if len(items) == 0 {
		items = legacy.Get("entities.media").Array()
	}
	var out []Media
	for _, m := range items {
		if media, ok := mapMedia(m); ok {
			out = append(out, media)
		}
	}
	return out
}

func mapMedia(m gjson.Result) (Media, bool) {
	u := firstString(m, "media_url_https", "media_url")
	if u == "" {
		return Media{}, false
	}
	media := Media{
		Type: m.Get("type").String(),
		URL:  u,
	}
	if media.Type == "" {
		media.Type = "photo"
	}

	sizes := namedSizes(m.Get("sizes"))
	if full, ok := fullSize(sizes); ok {
		media.Width, media.Height = full.width, full.height
		if preview, ok := previewSize(sizes, full.name); ok {
			media.PreviewURL = u + ":" + preview.name
		}
	} else {
		media.Width = int(m.Get("original_info.width").Int())
		media.Height = int(m.Get("original_info.height").Int())
	}

	if media.Type == "video" || media.Type == "animated_gif" {
		media.VideoURL = bestVariant(m.Get("video_info.variants"))
		media.DurationMs = int(m.Get("video_info.duration_millis").Int())
	}
	return media, true
}

func namedSizes(sizes gjson.Result) []mediaSize {
	var out []mediaSize
	sizes.ForEach(func(name, v gjson.Result) bool {
		out = append(out, mediaSize{
			name:   name.String(),
			width:  int(v.Get("w").Int()),
			height: int(v.Get("h").Int()),
		})
		return true
	})
	return out
}

// fullSize is the "large" rendition, else the largest by area.
func fullSize(sizes []mediaSize) (mediaSize, bool) {
	var best mediaSize
	found := false
	for _, s := range sizes {
		if s.name == "large" {
			return s, true
		}
		if !found || s.area() > best.area() {
			best, found = s, true
		}
	}
	return best, found
}

// previewSize is the smallest rendition other than the full one.
func previewSize(sizes []mediaSize, full string) (mediaSize, bool) {
	var best mediaSize
	found := false
	for _, s := range sizes {
		if s.name == full {
			continue
		}
		if !found || s.area() < best.area() || (s.area() == best.area() && s.name < best.name) {
			best, found = s, true
		}
	}
	return best, found
}

// bestVariant returns the highest-bitrate mp4 URL of a video.
func bestVariant(variants gjson.Result) string {
	best, bestRate := "", int64(-1)
	for _, v := range variants.Array() {
		if !strings.Contains(v.Get("content_type").String(), "mp4") {
			continue
		}
		if rate := v.Get("bitrate").Int(); rate > bestRate {
			best, bestRate = v.Get("url").String(), rate
		}
	}
	return best
}
