// package formatter exports media lists to CSV, Markdown, plain text and JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/desertthunder/mrx/internal/models"
)

// Formats accepted by the writers.
const (
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatText     = "txt"
)

// ExportToCSV converts a list to CSV with columns: Position, Item ID, Media ID, Title, Type, Year, Notes
func ExportToCSV(list *models.ListDetails) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Position", "Item ID", "Media ID", "Title", "Type", "Year", "Notes"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, item := range list.Items {
		var mediaType, year string
		if item.Media != nil {
			mediaType = string(item.Media.Type)
			year = item.Media.Year()
		}
		record := []string{
			strconv.Itoa(i + 1),
			item.ID,
			item.MediaID,
			item.Title(),
			mediaType,
			year,
			item.Notes,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a list to Markdown with an optional cover image
func ExportToMarkdown(list *models.ListDetails, imageFilename string) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", list.Name)

	if imageFilename != "" {
		fmt.Fprintf(&buf, "![Cover](%s)\n\n", imageFilename)
	}

	if list.Description != "" {
		fmt.Fprintf(&buf, "**Description**: %s\n\n", list.Description)
	}

	fmt.Fprintf(&buf, "**Items**: %d\n", len(list.Items))
	fmt.Fprintf(&buf, "**Visibility**: %s\n\n", Visibility(list.IsPublic))

	buf.WriteString("## Items\n\n")
	for i, item := range list.Items {
		fmt.Fprintf(&buf, "%d. %s%s\n", i+1, item.Title(), mediaSuffix(item.Media))
		if item.Notes != "" {
			fmt.Fprintf(&buf, "   > %s\n", item.Notes)
		}
	}

	return buf.Bytes(), nil
}

// ExportToText converts a list to plain text
func ExportToText(list *models.ListDetails) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "List: %s\n", list.Name)
	if list.Description != "" {
		fmt.Fprintf(&buf, "Description: %s\n", list.Description)
	}
	fmt.Fprintf(&buf, "Items: %d\n\n", len(list.Items))

	for i, item := range list.Items {
		fmt.Fprintf(&buf, "%d. %s%s\n", i+1, item.Title(), mediaSuffix(item.Media))
	}

	return buf.Bytes(), nil
}

// ExportToJSON converts a list and its items to indented JSON
func ExportToJSON(list *models.ListDetails) ([]byte, error) {
	return json.MarshalIndent(list, "", "  ")
}

// ToMetadataJSON generates a JSON representation of list metadata (without items)
func ToMetadataJSON(list models.MediaList) ([]byte, error) {
	return json.MarshalIndent(list, "", "  ")
}

// Visibility renders the public flag of a list.
func Visibility(public bool) string {
	if public {
		return "Public"
	}
	return "Private"
}

// mediaSuffix renders " (1999, movie)" style details for an item.
func mediaSuffix(m *models.MediaItem) string {
	if m == nil {
		return ""
	}
	year := m.Year()
	switch {
	case year != "" && m.Type != "":
		return fmt.Sprintf(" (%s, %s)", year, m.Type)
	case year != "":
		return fmt.Sprintf(" (%s)", year)
	case m.Type != "":
		return fmt.Sprintf(" (%s)", m.Type)
	default:
		return ""
	}
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// CoverImage returns the cover of the first item that has one.
func CoverImage(list *models.ListDetails) string {
	for _, item := range list.Items {
		if item.Media != nil && item.Media.CoverImage != "" {
			return item.Media.CoverImage
		}
	}
	return ""
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	ItemsFile    string
	MetadataFile string
}

// WriteCSVExport exports a list to CSV with an accompanying metadata JSON file.
//
// Defaults to the list ID as the base filename & creates {base}_items.csv and {base}_metadata.json
func WriteCSVExport(list *models.ListDetails, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = list.ID
	}

	csvData, err := ExportToCSV(list)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	itemsFile := baseFilepath + "_items.csv"
	if err := os.WriteFile(itemsFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := ToMetadataJSON(list.MediaList)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := baseFilepath + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{
		ItemsFile:    itemsFile,
		MetadataFile: metadataFile,
	}, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory  string
	Files      []string
	CoverImage string
}

// WriteMarkdownExport exports a list to Markdown in a dedicated directory.
//
// Directory name defaults to the list ID. When imageURL is set the cover is
// downloaded next to the README; a failed download only drops the image.
// Creates: {dir}/README.md and optionally {dir}/cover.jpg
func WriteMarkdownExport(list *models.ListDetails, outputDir string, imageURL string) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = list.ID
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{
		Directory: outputDir,
		Files:     []string{},
	}

	var coverImageFilename string
	if imageURL != "" {
		if imageData, err := DownloadImage(imageURL); err == nil {
			coverImagePath := filepath.Join(outputDir, "cover.jpg")
			if err := os.WriteFile(coverImagePath, imageData, 0644); err == nil {
				coverImageFilename = "cover.jpg"
				result.CoverImage = coverImagePath
				result.Files = append(result.Files, coverImagePath)
			}
		}
	}

	mdData, err := ExportToMarkdown(list, coverImageFilename)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	result.Files = append(result.Files, mdFile)

	return result, nil
}

// WriteTextExport exports a list to plain text.
//
// Defaults to {list.ID}_items.txt as the filename.
func WriteTextExport(list *models.ListDetails, path string) (string, error) {
	if path == "" {
		path = fmt.Sprintf("%s_items.txt", list.ID)
	}

	textData, err := ExportToText(list)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(path, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return path, nil
}

// WriteJSONExport exports a list to JSON.
//
// Defaults to {list.ID}.json as the filename.
func WriteJSONExport(list *models.ListDetails, path string) (string, error) {
	if path == "" {
		path = list.ID + ".json"
	}

	data, err := ExportToJSON(list)
	if err != nil {
		return "", fmt.Errorf("failed to generate JSON: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write JSON file: %w", err)
	}

	return path, nil
}

// Write exports list into dir in the given format and returns the files created.
func Write(list *models.ListDetails, format, dir string) ([]string, error) {
	switch format {
	case FormatCSV:
		res, err := WriteCSVExport(list, filepath.Join(dir, list.ID))
		if err != nil {
			return nil, fmt.Errorf("CSV export failed: %w", err)
		}
		return []string{res.ItemsFile, res.MetadataFile}, nil
	case FormatMarkdown:
		res, err := WriteMarkdownExport(list, filepath.Join(dir, list.ID), CoverImage(list))
		if err != nil {
			return nil, fmt.Errorf("markdown export failed: %w", err)
		}
		return res.Files, nil
	case FormatText:
		path, err := WriteTextExport(list, filepath.Join(dir, list.ID+"_items.txt"))
		if err != nil {
			return nil, fmt.Errorf("text export failed: %w", err)
		}
		return []string{path}, nil
	case FormatJSON, "":
		path, err := WriteJSONExport(list, filepath.Join(dir, list.ID+".json"))
		if err != nil {
			return nil, fmt.Errorf("JSON export failed: %w", err)
		}
		return []string{path}, nil
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

// ManifestEntry is the outcome of exporting one list.
type ManifestEntry struct {
	ListID   string   `json:"list_id"`
	ListName string   `json:"list_name"`
	Status   string   `json:"status"`
	Files    []string `json:"files,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// Manifest summarizes a bulk export.
type Manifest struct {
	Format            string          `json:"format"`
	ExportedAt        time.Time       `json:"exported_at"`
	TotalLists        int             `json:"total_lists"`
	SuccessfulExports int             `json:"successful_exports"`
	FailedExports     int             `json:"failed_exports"`
	Lists             []ManifestEntry `json:"lists"`
}

// WriteManifest writes m as indented JSON to path.
func WriteManifest(m Manifest, path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
