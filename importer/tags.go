package importer

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// TagTier classifies how descriptive a tag set is.
type TagTier string

const (
	TagTierAuto     TagTier = "auto" // pick a tier from the text itself
	TagTierSimple   TagTier = "simple"
	TagTierNormal   TagTier = "normal"
	TagTierDetailed TagTier = "detailed"
)

// captionThreshold separates a prose caption from a tag list. Sidecar content
// longer than this is stored as a single tag.
const captionThreshold = 50

// TagOptions controls the tag side of an import.
type TagOptions struct {
	ImportTags bool
	Tier       TagTier
	// Append merges with tags already on the record instead of replacing
	// them.
	Append bool
}

// findTagFile returns the sidecar text file for an image path, or "" when
// none exists. The sidecar shares the image's base name with a .txt
// extension.
func findTagFile(imagePath string) string {
	base := strings.TrimSuffix(imagePath, filepath.Ext(imagePath))
	tagPath := base + ".txt"
	if info, err := os.Stat(tagPath); err == nil && !info.IsDir() {
		return tagPath
	}
	return ""
}

// readTagFile parses a sidecar file into tags. Long prose content becomes a
// single caption tag; otherwise each line is split on commas, with '#'
// comment lines skipped.
func readTagFile(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	content := strings.TrimSpace(string(raw))
	if content == "" {
		return nil, nil
	}
	if len(content) > captionThreshold {
		return []string{content}, nil
	}

	var tags []string
	seen := make(map[string]bool)
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		for _, tag := range strings.Split(line, ",") {
			tag = strings.TrimSpace(tag)
			if tag == "" || seen[tag] {
				continue
			}
			seen[tag] = true
			tags = append(tags, tag)
		}
	}
	return tags, nil
}

// detectTier chooses a tier from the combined tag text: short and few words
// reads as simple keywords, long or wordy as a detailed description.
func detectTier(tags []string) TagTier {
	combined := strings.Join(tags, " ")
	words := len(strings.Fields(combined))

	switch {
	case len(combined) < 100 && words <= 10:
		return TagTierSimple
	case len(combined) > 300 || words > 20:
		return TagTierDetailed
	default:
		return TagTierNormal
	}
}

func tierColumn(tier TagTier) string {
	switch tier {
	case TagTierSimple:
		return "simple_tags"
	case TagTierDetailed:
		return "detailed_tags"
	default:
		return "normal_tags"
	}
}

// ImportTagsForPhoto reads the sidecar next to imagePath and attaches its
// tags to the record. Returns the number of tags stored; no sidecar is not an
// error.
func (i *Importer) ImportTagsForPhoto(photoID uint, imagePath string, opts TagOptions) (int, error) {
	tagPath := findTagFile(imagePath)
	if tagPath == "" {
		return 0, nil
	}

	tags, err := readTagFile(tagPath)
	if err != nil {
		return 0, err
	}
	if len(tags) == 0 {
		return 0, nil
	}

	return len(tags), i.ApplyTags(photoID, tags, opts)
}

// ApplyTags stores tags on a record under the requested tier, translating
// them best-effort.
func (i *Importer) ApplyTags(photoID uint, tags []string, opts TagOptions) error {
	tier := opts.Tier
	if tier == "" || tier == TagTierAuto {
		tier = detectTier(tags)
	}

	if opts.Append {
		photo, err := i.photos.GetByID(photoID)
		if err != nil {
			return err
		}
		existing := decodeJSONList(photo.Tags)
		seen := make(map[string]bool, len(existing))
		merged := existing
		for _, tag := range existing {
			seen[tag] = true
		}
		for _, tag := range tags {
			if !seen[tag] {
				seen[tag] = true
				merged = append(merged, tag)
			}
		}
		tags = merged
	}

	translations := map[string]string{}
	if i.translator != nil {
		if translated, err := i.translator.Translate(tags); err != nil {
			i.log.WithField("photo_id", photoID).WithError(err).Warn("tag translation failed")
		} else {
			translations = translated
		}
	}

	updates := map[string]interface{}{
		"tags":             encodeJSONList(tags),
		"tag_translations": encodeMapJSON(translations),
		tierColumn(tier):   encodeJSONList(tags),
	}
	if err := i.photos.UpdateFields(photoID, updates); err != nil {
		return err
	}

	i.log.WithFields(logrus.Fields{"photo_id": photoID, "tier": tier, "count": len(tags)}).
		Debug("tags stored")
	return nil
}

// PhotoTags is the parsed view of a record's tag columns.
type PhotoTags struct {
	Tags         []string          `json:"tags"`
	SimpleTags   []string          `json:"simple_tags"`
	NormalTags   []string          `json:"normal_tags"`
	DetailedTags []string          `json:"detailed_tags"`
	Translations map[string]string `json:"translations"`
}

// GetPhotoTags returns the tags stored on a record, parsed per tier.
func (i *Importer) GetPhotoTags(photoID uint) (*PhotoTags, error) {
	photo, err := i.photos.GetByID(photoID)
	if err != nil {
		return nil, err
	}
	return &PhotoTags{
		Tags:         decodeJSONList(photo.Tags),
		SimpleTags:   decodeJSONList(photo.SimpleTags),
		NormalTags:   decodeJSONList(photo.NormalTags),
		DetailedTags: decodeJSONList(photo.DetailedTags),
		Translations: decodeMapJSON(photo.TagTranslations),
	}, nil
}
