package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/anisan-cli/trackplayer/constant"
	"github.com/anisan-cli/trackplayer/where"
	levenshtein "github.com/ka-weihe/fast-levenshtein"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// ErrUnknownKey is returned for keys that were never registered.
var ErrUnknownKey = errors.New("unknown key")

// Lookup returns the field registered under name. The error of an unknown
// name suggests the closest registered key.
func Lookup(name string) (Field, error) {
	if field, ok := Default[name]; ok {
		return field, nil
	}

	closest := lo.MinBy(lo.Keys(Default), func(a, b string) bool {
		return levenshtein.Distance(name, a) < levenshtein.Distance(name, b)
	})
	return Field{}, fmt.Errorf("%w %s, did you mean %s?", ErrUnknownKey, name, closest)
}

// Parse converts raw command line values to the type of the field's default.
func (f *Field) Parse(raw []string) (any, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("no value for %s", f.Key)
	}

	switch f.Value.(type) {
	case []string:
		return raw, nil
	case string:
		return raw[0], nil
	case int:
		v, err := strconv.Atoi(raw[0])
		if err != nil {
			return nil, fmt.Errorf("%s expects an integer, got %q", f.Key, raw[0])
		}
		return v, nil
	case float64:
		v, err := strconv.ParseFloat(raw[0], 64)
		if err != nil {
			return nil, fmt.Errorf("%s expects a number, got %q", f.Key, raw[0])
		}
		return v, nil
	case bool:
		v, err := strconv.ParseBool(raw[0])
		if err != nil {
			return nil, fmt.Errorf("%s expects true or false, got %q", f.Key, raw[0])
		}
		return v, nil
	}
	return nil, fmt.Errorf("%s has unsupported type %s", f.Key, f.typeName())
}

// File is the path of the config file.
func File() string {
	return filepath.Join(where.Config(), constant.App+".toml")
}

// Persist writes the current values, creating the config file when missing.
func Persist() error {
	err := viper.WriteConfig()
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		return viper.SafeWriteConfig()
	}
	return err
}
