package catalog

// Package catalog provides catalog seed parsing, validation and loading.

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// SeedConfig is a catalog.yaml document.
type SeedConfig struct {
	Categories []string        `yaml:"categories"`
	Colours    []string        `yaml:"colours"`
	Sizes      []string        `yaml:"sizes"`
	Products   []ProductConfig `yaml:"products"`
}

// ProductConfig is one product in catalog.yaml. Price is a decimal string
// such as "19.99"; Slug is derived from Title when empty.
type ProductConfig struct {
	Title               string   `yaml:"title"`
	Slug                string   `yaml:"slug"`
	Image               string   `yaml:"image"`
	Description         string   `yaml:"description"`
	Price               string   `yaml:"price"`
	Stock               int      `yaml:"stock"`
	Active              bool     `yaml:"active"`
	Category            string   `yaml:"category"`
	SecondaryCategories []string `yaml:"secondary_categories"`
	Colours             []string `yaml:"colours"`
	Sizes               []string `yaml:"sizes"`
}

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(content []byte) (*SeedConfig, error) {
	var config SeedConfig
	if err := yaml.Unmarshal(content, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return &config, nil
}

func (p *Parser) ParseFromString(content string) (*SeedConfig, error) {
	return p.Parse([]byte(content))
}
