package media

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
)

// AIMetadata describes generation parameters recovered from AI-produced
// images (Stable Diffusion WebUI, ComfyUI, Midjourney). All fields default to
// zero values for ordinary photographs.
type AIMetadata struct {
	IsAIGenerated      bool   `json:"is_ai_generated"`
	GenerationSoftware string `json:"generation_software,omitempty"`

	ModelName      string  `json:"model_name,omitempty"`
	PositivePrompt string  `json:"positive_prompt,omitempty"`
	NegativePrompt string  `json:"negative_prompt,omitempty"`
	Sampler        string  `json:"sampler,omitempty"`
	Steps          int     `json:"steps,omitempty"`
	CFGScale       float64 `json:"cfg_scale,omitempty"`
	Seed           int64   `json:"seed,omitempty"`
	Size           string  `json:"size,omitempty"` // "1024x1024"

	// Raw carries the untouched source text keyed by where it was found
	// (png keyword or exif tag), for forward compatibility.
	Raw map[string]string `json:"raw_metadata,omitempty"`
}

// JSON renders the metadata as a JSON blob for storage. Never fails; a
// marshalling problem yields "{}".
func (m *AIMetadata) JSON() string {
	if m == nil {
		return "{}"
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "{}"
	}
	return string(b)
}

var (
	stepsRe    = regexp.MustCompile(`Steps: (\d+)`)
	samplerRe  = regexp.MustCompile(`Sampler: ([^,\n]+)`)
	cfgRe      = regexp.MustCompile(`CFG scale: ([\d.]+)`)
	seedRe     = regexp.MustCompile(`Seed: (\d+)`)
	sizeRe     = regexp.MustCompile(`Size: (\d+x\d+)`)
	modelRe    = regexp.MustCompile(`Model: ([^,\n]+)`)
	longSeedRe = regexp.MustCompile(`(\d{10,})`)
)

// ExtractAIMetadata inspects an image for AI-generation parameters. PNG text
// chunks are the primary source (WebUI writes "parameters", ComfyUI writes
// "prompt"/"workflow"); JPEGs are checked through their EXIF description
// tags. Extraction is best-effort: an unreadable file returns an error, an
// ordinary photo returns an all-default structure.
func ExtractAIMetadata(path string) (*AIMetadata, error) {
	meta := &AIMetadata{}

	texts, err := readPNGTextChunks(path)
	if err != nil {
		return nil, err
	}
	if texts == nil {
		// not a PNG; fall back to EXIF description tags
		texts = readExifTexts(path)
	}

	if len(texts) > 0 {
		meta.Raw = texts
	}

	if params, ok := texts["parameters"]; ok {
		parseWebUIParameters(params, meta)
	} else if prompt, ok := texts["prompt"]; ok {
		parseComfyUIPrompt(prompt, meta)
	} else {
		for _, key := range []string{"Description", "ImageDescription", "UserComment"} {
			if desc, ok := texts[key]; ok && looksLikeMidjourney(desc) {
				parseMidjourneyDescription(desc, meta)
				break
			}
		}
	}

	// some generators only leave the seed in the filename
	if meta.IsAIGenerated && meta.Seed == 0 {
		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		if m := longSeedRe.FindString(base); m != "" {
			if seed, err := strconv.ParseInt(m, 10, 64); err == nil {
				meta.Seed = seed
			}
		}
	}

	return meta, nil
}

func parseWebUIParameters(params string, meta *AIMetadata) {
	meta.IsAIGenerated = true
	meta.GenerationSoftware = "Stable Diffusion WebUI"

	if m := stepsRe.FindStringSubmatch(params); m != nil {
		meta.Steps, _ = strconv.Atoi(m[1])
	}
	if m := samplerRe.FindStringSubmatch(params); m != nil {
		meta.Sampler = strings.TrimSpace(m[1])
	}
	if m := cfgRe.FindStringSubmatch(params); m != nil {
		meta.CFGScale, _ = strconv.ParseFloat(m[1], 64)
	}
	if m := seedRe.FindStringSubmatch(params); m != nil {
		meta.Seed, _ = strconv.ParseInt(m[1], 10, 64)
	}
	if m := sizeRe.FindStringSubmatch(params); m != nil {
		meta.Size = m[1]
	}
	if m := modelRe.FindStringSubmatch(params); m != nil {
		meta.ModelName = strings.TrimSpace(m[1])
	}

	// prompt lines precede "Negative prompt:"; the parameter list is last
	var positive, negative []string
	section := 0
	for _, line := range strings.Split(params, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "Negative prompt:"):
			section = 1
			negative = append(negative, strings.TrimSpace(strings.TrimPrefix(trimmed, "Negative prompt:")))
		case stepsRe.MatchString(trimmed):
			section = 2
		case section == 0 && trimmed != "":
			positive = append(positive, trimmed)
		case section == 1 && trimmed != "":
			negative = append(negative, trimmed)
		}
	}
	meta.PositivePrompt = strings.Join(positive, "\n")
	meta.NegativePrompt = strings.Join(negative, "\n")
}

func parseComfyUIPrompt(prompt string, meta *AIMetadata) {
	meta.IsAIGenerated = true
	meta.GenerationSoftware = "ComfyUI"

	// the prompt chunk is a JSON workflow graph; pull what node inputs we can
	var graph map[string]struct {
		ClassType string                 `json:"class_type"`
		Inputs    map[string]interface{} `json:"inputs"`
	}
	if err := json.Unmarshal([]byte(prompt), &graph); err != nil {
		return
	}
	for _, node := range graph {
		switch node.ClassType {
		case "KSampler", "KSamplerAdvanced":
			if v, ok := node.Inputs["seed"].(float64); ok {
				meta.Seed = int64(v)
			}
			if v, ok := node.Inputs["noise_seed"].(float64); ok && meta.Seed == 0 {
				meta.Seed = int64(v)
			}
			if v, ok := node.Inputs["steps"].(float64); ok {
				meta.Steps = int(v)
			}
			if v, ok := node.Inputs["cfg"].(float64); ok {
				meta.CFGScale = v
			}
			if v, ok := node.Inputs["sampler_name"].(string); ok {
				meta.Sampler = v
			}
		case "CheckpointLoaderSimple":
			if v, ok := node.Inputs["ckpt_name"].(string); ok {
				meta.ModelName = v
			}
		case "CLIPTextEncode":
			if v, ok := node.Inputs["text"].(string); ok && meta.PositivePrompt == "" {
				meta.PositivePrompt = v
			}
		}
	}
}

func looksLikeMidjourney(desc string) bool {
	return strings.Contains(desc, "Midjourney") ||
		strings.Contains(desc, "--ar ") ||
		strings.Contains(desc, "--v ")
}

func parseMidjourneyDescription(desc string, meta *AIMetadata) {
	meta.IsAIGenerated = true
	meta.GenerationSoftware = "Midjourney"

	// prompt is everything before the first -- switch
	if idx := strings.Index(desc, "--"); idx > 0 {
		meta.PositivePrompt = strings.TrimSpace(desc[:idx])
	} else {
		meta.PositivePrompt = strings.TrimSpace(desc)
	}
	if m := regexp.MustCompile(`--ar (\d+:\d+)`).FindStringSubmatch(desc); m != nil {
		meta.Size = m[1]
	}
}

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// readPNGTextChunks returns the tEXt/zTXt/iTXt entries of a PNG keyed by
// keyword. A non-PNG file returns (nil, nil); a malformed chunk stream stops
// the walk with whatever was collected so far.
func readPNGTextChunks(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ai metadata: failed to open %s: %w", path, err)
	}
	defer f.Close()

	sig := make([]byte, 8)
	if _, err := io.ReadFull(f, sig); err != nil || !bytes.Equal(sig, pngSignature) {
		return nil, nil
	}

	texts := make(map[string]string)
	header := make([]byte, 8)
	for {
		if _, err := io.ReadFull(f, header); err != nil {
			break
		}
		length := binary.BigEndian.Uint32(header[:4])
		chunkType := string(header[4:8])

		if chunkType == "IEND" {
			break
		}

		switch chunkType {
		case "tEXt", "zTXt", "iTXt":
			if length > 16*1024*1024 {
				return texts, nil
			}
			data := make([]byte, length)
			if _, err := io.ReadFull(f, data); err != nil {
				return texts, nil
			}
			if keyword, text, ok := decodeTextChunk(chunkType, data); ok {
				texts[keyword] = text
			}
			if _, err := f.Seek(4, io.SeekCurrent); err != nil { // CRC
				return texts, nil
			}
		default:
			if _, err := f.Seek(int64(length)+4, io.SeekCurrent); err != nil {
				return texts, nil
			}
		}
	}

	if len(texts) == 0 {
		return map[string]string{}, nil
	}
	return texts, nil
}

func decodeTextChunk(chunkType string, data []byte) (keyword, text string, ok bool) {
	sep := bytes.IndexByte(data, 0)
	if sep < 0 {
		return "", "", false
	}
	keyword = string(data[:sep])
	rest := data[sep+1:]

	switch chunkType {
	case "tEXt":
		return keyword, string(rest), true
	case "zTXt":
		if len(rest) < 1 || rest[0] != 0 { // only deflate is defined
			return "", "", false
		}
		r, err := zlib.NewReader(bytes.NewReader(rest[1:]))
		if err != nil {
			return "", "", false
		}
		defer r.Close()
		out, err := io.ReadAll(r)
		if err != nil {
			return "", "", false
		}
		return keyword, string(out), true
	case "iTXt":
		if len(rest) < 2 {
			return "", "", false
		}
		compressed := rest[0] == 1
		rest = rest[2:] // compression flag + method
		// skip language tag and translated keyword
		for i := 0; i < 2; i++ {
			sep := bytes.IndexByte(rest, 0)
			if sep < 0 {
				return "", "", false
			}
			rest = rest[sep+1:]
		}
		if !compressed {
			return keyword, string(rest), true
		}
		r, err := zlib.NewReader(bytes.NewReader(rest))
		if err != nil {
			return "", "", false
		}
		defer r.Close()
		out, err := io.ReadAll(r)
		if err != nil {
			return "", "", false
		}
		return keyword, string(out), true
	}
	return "", "", false
}

// readExifTexts pulls the description-bearing EXIF tags out of a JPEG/TIFF.
// Best-effort: any failure yields an empty map.
func readExifTexts(path string) map[string]string {
	f, err := os.Open(path)
	if err != nil {
		return map[string]string{}
	}
	defer f.Close()

	exifData, err := exif.Decode(f)
	if err != nil {
		return map[string]string{}
	}

	texts := make(map[string]string)
	for _, tagName := range []exif.FieldName{exif.ImageDescription, exif.UserComment, exif.Software} {
		if v := getString(exifData, tagName); v != nil {
			texts[string(tagName)] = *v
		}
	}
	return texts
}
