package main

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Profile is the YAML run profile consumed by the optimize and report
// commands.
type Profile struct {
	Store struct {
		Kind string `yaml:"kind" validate:"omitempty,oneof=memory sqlite"`
		Path string `yaml:"path"`
	} `yaml:"store"`

	Optimize struct {
		InitialStrategy       string  `yaml:"initial_strategy" validate:"omitempty,oneof=random centroid"`
		InitialPopulationSize int     `yaml:"initial_population_size" validate:"gte=0"`
		ViolationRadius       float64 `yaml:"violation_radius" validate:"gte=0"`
		Metric                string  `yaml:"metric" validate:"omitempty,oneof=cosine euclidean manhattan"`
		NodeCost              float64 `yaml:"node_cost" validate:"gte=0"`
		PopulationSize        int     `yaml:"population_size" validate:"gte=0"`
		Epochs                int     `yaml:"epochs" validate:"gte=0"`
		EliteCount            int     `yaml:"elite_count" validate:"gte=0"`
		RefreshFraction       float64 `yaml:"refresh_fraction" validate:"gte=0,lt=1"`
		TournamentSize        int     `yaml:"tournament_size" validate:"gte=0"`
		Workers               int     `yaml:"workers" validate:"gte=0"`
		Seed                  int64   `yaml:"seed"`
		SortSimilarity        bool    `yaml:"sort_similarity"`
	} `yaml:"optimize"`

	Report struct {
		Title       string `yaml:"title"`
		MaxExamples int    `yaml:"max_examples" validate:"gte=0"`
		Metric      string `yaml:"metric" validate:"omitempty,oneof=cosine euclidean manhattan"`
	} `yaml:"report"`
}

func loadProfile(path string) (Profile, error) {
	var profile Profile
	if path == "" {
		return profile, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("read profile: %w", err)
	}
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return Profile{}, fmt.Errorf("parse profile: %w", err)
	}
	if err := validator.New().Struct(profile); err != nil {
		return Profile{}, fmt.Errorf("validate profile: %w", err)
	}
	return profile, nil
}
