package cli

import (
	"io"
	"reflect"
	"testing"

	"github.com/spf13/pflag"
)

func TestRegisterCopyFlagParsesValues(t *testing.T) {
	testCases := []struct {
		name              string
		arguments         []string
		expected          bool
		expectPositionals []string
		expectError       bool
	}{
		{
			name:      "defaults_to_false",
			arguments: []string{},
			expected:  false,
		},
		{
			name:      "sets_true_without_value",
			arguments: []string{"--copy"},
			expected:  true,
		},
		{
			name:      "sets_false_with_equals",
			arguments: []string{"--copy=false"},
			expected:  false,
		},
		{
			name:      "sets_false_with_no",
			arguments: []string{"--copy", "no"},
			expected:  false,
		},
		{
			name:              "keeps_following_path",
			arguments:         []string{"--copy", "./service"},
			expected:          true,
			expectPositionals: []string{"./service"},
		},
		{
			name:        "rejects_invalid_text",
			arguments:   []string{"--copy=maybe"},
			expectError: true,
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			var flagValue bool
			flagSet := pflag.NewFlagSet("copy-flag", pflag.ContinueOnError)
			flagSet.SetOutput(io.Discard)
			registerCopyFlag(flagSet, &flagValue)
			normalizedArguments := normalizeCopyFlagArguments(testCase.arguments)
			parseErr := flagSet.Parse(normalizedArguments)
			if testCase.expectError {
				if parseErr == nil {
					t.Fatalf("expected error for arguments %v", testCase.arguments)
				}
				return
			}
			if parseErr != nil {
				t.Fatalf("unexpected parse error: %v", parseErr)
			}
			if flagValue != testCase.expected {
				t.Fatalf("expected value %t, got %t", testCase.expected, flagValue)
			}
			positionals := flagSet.Args()
			if len(positionals) == 0 {
				positionals = nil
			}
			if !reflect.DeepEqual(positionals, testCase.expectPositionals) {
				t.Fatalf("expected positionals %v, got %v", testCase.expectPositionals, positionals)
			}
		})
	}
}

func TestNormalizeCopyFlagArgumentsStopsAtTerminator(t *testing.T) {
	arguments := []string{"-e", "vendor", "--", "--copy", "yes"}
	normalized := normalizeCopyFlagArguments(arguments)
	if !reflect.DeepEqual(normalized, arguments) {
		t.Fatalf("expected arguments after -- to be untouched, got %v", normalized)
	}
}
