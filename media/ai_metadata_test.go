package media

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeTestPNG builds a minimal PNG containing the given tEXt chunks.
func writeTestPNG(t *testing.T, path string, texts map[string]string) {
	t.Helper()

	var buf bytes.Buffer
	buf.Write(pngSignature)

	writeChunk := func(chunkType string, data []byte) {
		var header [8]byte
		binary.BigEndian.PutUint32(header[:4], uint32(len(data)))
		copy(header[4:], chunkType)
		buf.Write(header[:])
		buf.Write(data)
		buf.Write([]byte{0, 0, 0, 0}) // CRC, not verified on read
	}

	for keyword, text := range texts {
		data := append([]byte(keyword), 0)
		data = append(data, []byte(text)...)
		writeChunk("tEXt", data)
	}
	writeChunk("IEND", nil)

	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
}

func TestExtractAIMetadataWebUI(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "generated.png")

	params := "a cat sitting on a fence, masterpiece\n" +
		"Negative prompt: blurry, low quality\n" +
		"Steps: 28, Sampler: DPM++ 2M Karras, CFG scale: 7.5, Seed: 1234567890, Size: 1024x768, Model: dreamshaper_8"
	writeTestPNG(t, path, map[string]string{"parameters": params})

	meta, err := ExtractAIMetadata(path)
	require.NoError(t, err)

	require.True(t, meta.IsAIGenerated)
	require.Equal(t, "Stable Diffusion WebUI", meta.GenerationSoftware)
	require.Equal(t, "a cat sitting on a fence, masterpiece", meta.PositivePrompt)
	require.Equal(t, "blurry, low quality", meta.NegativePrompt)
	require.Equal(t, 28, meta.Steps)
	require.Equal(t, "DPM++ 2M Karras", meta.Sampler)
	require.Equal(t, 7.5, meta.CFGScale)
	require.Equal(t, int64(1234567890), meta.Seed)
	require.Equal(t, "1024x768", meta.Size)
	require.Equal(t, "dreamshaper_8", meta.ModelName)
}

func TestExtractAIMetadataComfyUI(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "comfy.png")

	prompt := `{
		"3": {"class_type": "KSampler", "inputs": {"seed": 42, "steps": 20, "cfg": 8.0, "sampler_name": "euler"}},
		"4": {"class_type": "CheckpointLoaderSimple", "inputs": {"ckpt_name": "sdxl_base.safetensors"}},
		"6": {"class_type": "CLIPTextEncode", "inputs": {"text": "a mountain lake at dawn"}}
	}`
	writeTestPNG(t, path, map[string]string{"prompt": prompt})

	meta, err := ExtractAIMetadata(path)
	require.NoError(t, err)

	require.True(t, meta.IsAIGenerated)
	require.Equal(t, "ComfyUI", meta.GenerationSoftware)
	require.Equal(t, int64(42), meta.Seed)
	require.Equal(t, 20, meta.Steps)
	require.Equal(t, 8.0, meta.CFGScale)
	require.Equal(t, "euler", meta.Sampler)
	require.Equal(t, "sdxl_base.safetensors", meta.ModelName)
	require.Equal(t, "a mountain lake at dawn", meta.PositivePrompt)
}

func TestExtractAIMetadataOrdinaryPNG(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plain.png")
	writeTestPNG(t, path, nil)

	meta, err := ExtractAIMetadata(path)
	require.NoError(t, err)
	require.False(t, meta.IsAIGenerated)
	require.Empty(t, meta.GenerationSoftware)
}

func TestExtractAIMetadataNonPNG(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "photo.jpg")
	require.NoError(t, os.WriteFile(path, []byte("no exif here"), 0644))

	meta, err := ExtractAIMetadata(path)
	require.NoError(t, err)
	require.False(t, meta.IsAIGenerated)
}

func TestExtractAIMetadataSeedFromFilename(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "output_9876543210.png")

	// AI-generated but no seed in the parameters text
	writeTestPNG(t, path, map[string]string{"parameters": "a forest\nSteps: 10, Sampler: Euler a"})

	meta, err := ExtractAIMetadata(path)
	require.NoError(t, err)
	require.True(t, meta.IsAIGenerated)
	require.Equal(t, int64(9876543210), meta.Seed)
}

func TestExtractAIMetadataMissingFile(t *testing.T) {
	_, err := ExtractAIMetadata(filepath.Join(t.TempDir(), "absent.png"))
	require.Error(t, err)
}
