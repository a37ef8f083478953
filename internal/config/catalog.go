package config

import (
	"fmt"
	"os"
	"sort"

	"github.com/Bessima/quicksms/internal/customerror"
	"github.com/Bessima/quicksms/internal/models"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const defaultCatalogYAML = `# products map a product tag to the supplier service code
products:
  whatsapp:  {code: wa, name: Whatsapp}
  telegram:  {code: tg, name: Telegram}
  google:    {code: go, name: Google}
  amazon:    {code: am, name: Amazon}
  tinder:    {code: oi, name: Tinder}
  microsoft: {code: mm, name: Microsoft}
  facebook:  {code: fb, name: Facebook}
  instagram: {code: ig, name: Instagram}
  tiktok:    {code: lf, name: Tiktok}

# regions map a region tag to the supplier country id
regions:
  france: {code: "78", name: "France (+33)"}
  canada: {code: "36", name: "Canada (+1)"}

packs:
  wa-tg:
    title: "Whatsapp (FR) + Telegram (CA)"
    steps:
      - {product: whatsapp, region: france}
      - {product: telegram, region: canada}

pricing:
  multipliers: [1.5, 1.3, 0.9]
  # supplier cost to sale currency, used by sales statistics
  cost_conversion: 0.9

operators: []
`

type Product struct {
	Code string `yaml:"code"`
	Name string `yaml:"name"`
}

type Region struct {
	Code string `yaml:"code"`
	Name string `yaml:"name"`
}

type Pack struct {
	Title string            `yaml:"title"`
	Steps []models.PackStep `yaml:"steps"`
}

type Pricing struct {
	Multipliers    []float64 `yaml:"multipliers"`
	CostConversion float64   `yaml:"cost_conversion"`
}

// OperatorSeed is merged into the operators table once at start-up.
type OperatorSeed struct {
	AccountID int64  `yaml:"account_id"`
	Name      string `yaml:"name"`
	Password  string `yaml:"password,omitempty"`
}

type Catalog struct {
	Products  map[string]Product `yaml:"products"`
	Regions   map[string]Region  `yaml:"regions"`
	Packs     map[string]Pack    `yaml:"packs"`
	Pricing   Pricing            `yaml:"pricing"`
	Operators []OperatorSeed     `yaml:"operators"`
}

// LoadCatalog reads the catalog file, or the built-in catalog when path is empty.
func LoadCatalog(path string) (*Catalog, error) {
	data := []byte(defaultCatalogYAML)
	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", path, err)
		}
		data = content
	}
	return ParseCatalog(data)
}

func ParseCatalog(data []byte) (*Catalog, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := catalog.Validate(); err != nil {
		return nil, err
	}
	return &catalog, nil
}

func (catalog *Catalog) Validate() error {
	if len(catalog.Products) == 0 || len(catalog.Regions) == 0 {
		return fmt.Errorf("catalog needs at least one product and one region")
	}
	for name, pack := range catalog.Packs {
		if len(pack.Steps) == 0 {
			return fmt.Errorf("pack %s has no steps", name)
		}
		for _, step := range pack.Steps {
			if _, _, err := catalog.Resolve(step.Product, step.Region); err != nil {
				return fmt.Errorf("pack %s: %w", name, err)
			}
		}
	}
	if len(catalog.Pricing.Multipliers) == 0 {
		return fmt.Errorf("pricing needs at least one multiplier")
	}
	return nil
}

// Resolve maps a product and region tag to their supplier entries.
func (catalog *Catalog) Resolve(product, region string) (Product, Region, error) {
	p, ok := catalog.Products[product]
	if !ok {
		return Product{}, Region{}, customerror.NewConfigurationError("product", product)
	}
	r, ok := catalog.Regions[region]
	if !ok {
		return Product{}, Region{}, customerror.NewConfigurationError("region", region)
	}
	return p, r, nil
}

func (catalog *Catalog) Pack(name string) (Pack, error) {
	pack, ok := catalog.Packs[name]
	if !ok {
		return Pack{}, customerror.NewConfigurationError("pack", name)
	}
	return pack, nil
}

// ProductTags returns product tags in a stable order.
func (catalog *Catalog) ProductTags() []string {
	tags := make([]string, 0, len(catalog.Products))
	for tag := range catalog.Products {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

func (pricing Pricing) Factors() []decimal.Decimal {
	factors := make([]decimal.Decimal, 0, len(pricing.Multipliers))
	for _, m := range pricing.Multipliers {
		factors = append(factors, decimal.NewFromFloat(m))
	}
	return factors
}

func (pricing Pricing) Conversion() decimal.Decimal {
	if pricing.CostConversion == 0 {
		return decimal.NewFromInt(1)
	}
	return decimal.NewFromFloat(pricing.CostConversion)
}
