package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

type Config struct {
	ServerPort        string
	TesseractDataPath string
	GeminiModel       string
	EmbeddingModel    string
	ResultBucket      string
	SynonymsPath      string
	MaxFileSize       int64
}

func LoadConfig() *Config {
	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		serverPort = "8080"
	}

	tesseractDataPath := os.Getenv("TESSDATA_PREFIX")
	if tesseractDataPath == "" {
		tesseractDataPath = "/usr/share/tesseract-ocr/5/tessdata"
	}

	geminiModel := os.Getenv("GEMINI_MODEL")
	if geminiModel == "" {
		geminiModel = "gemini-2.0-flash"
	}

	embeddingModel := os.Getenv("GEMINI_EMBEDDING_MODEL")
	if embeddingModel == "" {
		embeddingModel = "text-embedding-004"
	}

	return &Config{
		ServerPort:        serverPort,
		TesseractDataPath: tesseractDataPath,
		GeminiModel:       geminiModel,
		EmbeddingModel:    embeddingModel,
		ResultBucket:      os.Getenv("RESULT_BUCKET"),
		SynonymsPath:      os.Getenv("CATEGORY_SYNONYMS_FILE"),
		MaxFileSize:       32 * 1024 * 1024, // 32 MB
	}
}

// CategoryEntry is one canonical category with its configured synonyms.
// Order in the config file is the matching order, so it must be preserved.
type CategoryEntry struct {
	Name     string   `mapstructure:"name"`
	Synonyms []string `mapstructure:"synonyms"`
}

type Synonyms struct {
	Categories []CategoryEntry `mapstructure:"categories"`
}

// LoadSynonyms reads the category synonym table from a YAML file.
// An empty path returns the built-in default table.
func LoadSynonyms(path string) (*Synonyms, error) {
	if path == "" {
		return DefaultSynonyms(), nil
	}

	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read synonyms file: %w", err)
	}

	var syn Synonyms
	if err := v.Unmarshal(&syn); err != nil {
		return nil, fmt.Errorf("failed to parse synonyms file: %w", err)
	}
	if len(syn.Categories) == 0 {
		return nil, fmt.Errorf("synonyms file %s defines no categories", path)
	}
	return &syn, nil
}

// DefaultSynonyms covers the labels seen on typical park P&L statements.
func DefaultSynonyms() *Synonyms {
	return &Synonyms{Categories: []CategoryEntry{
		{Name: "Lot Rent", Synonyms: []string{"lot rent", "site rent", "space rent", "pad rent"}},
		{Name: "Utility Income", Synonyms: []string{"utility reimbursement", "water income", "sewer income", "electric income"}},
		{Name: "Other Income", Synonyms: []string{"late fee", "application fee", "laundry", "misc income"}},
		{Name: "Payroll", Synonyms: []string{"salaries", "wages", "manager salary", "labor"}},
		{Name: "Repairs & Maintenance", Synonyms: []string{"repairs", "maintenance", "r&m", "grounds"}},
		{Name: "Utilities", Synonyms: []string{"water", "sewer", "electric", "gas", "trash", "garbage"}},
		{Name: "Insurance", Synonyms: []string{"insurance", "property insurance", "liability"}},
		{Name: "Property Taxes", Synonyms: []string{"property tax", "real estate tax", "taxes"}},
		{Name: "Management", Synonyms: []string{"management fee", "property management"}},
		{Name: "Professional Fees", Synonyms: []string{"legal", "accounting", "professional"}},
		{Name: "Advertising", Synonyms: []string{"advertising", "marketing"}},
		{Name: "Capital Expenditures", Synonyms: []string{"capex", "capital improvement", "capital expense"}},
	}}
}
