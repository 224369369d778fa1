package options

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHelpListsDeclaredOptions(t *testing.T) {
	type listTarget struct {
		DB      string
		Verbose bool
	}

	Attributes(&listTarget{}, Decls{
		"DB": {Set("--db", Type(String), Metavar("URL"),
			Describe("Database URL"))},
		"Verbose": {Set("--verbose", Alias("-v"), Value(true),
			Describe("Verbose output"))},
	})

	help, err := Help(&listTarget{})
	require.NoError(t, err)

	assert.Contains(t, help, "--db URL")
	assert.Contains(t, help, "Database URL")
	assert.Contains(t, help, "--verbose, -v")
	assert.Contains(t, help, "Verbose output")
}

func TestHelpUsageLine(t *testing.T) {
	type usageTarget struct{ Name string }

	Attributes(&usageTarget{}, Decls{"Name": {Set("--name", Type(String))}})

	help, err := Help(&usageTarget{},
		Usage("[options] FILE..."),
		Prog("tool"),
		Description("Does tool things."))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(help, "Usage: tool [options] FILE..."))
	assert.Contains(t, help, "Does tool things.")

	// Usage defaults to empty, meaning no usage line at all.
	bare, err := Help(&usageTarget{})
	require.NoError(t, err)
	assert.NotContains(t, bare, "Usage:")
}

func TestHelpOmitsSuppressedInheritedOption(t *testing.T) {
	type hushBase struct{ Verbose bool }
	type hushChild struct{ hushBase }

	Attributes(&hushBase{}, Decls{
		"Verbose": {Set("--verbose", Value(true), Describe("Verbose output"))},
	})
	RejectInheritance(&hushChild{}, "--verbose")

	parentHelp, err := Help(&hushBase{})
	require.NoError(t, err)
	assert.Contains(t, parentHelp, "--verbose")

	childHelp, err := Help(&hushChild{})
	require.NoError(t, err)
	assert.NotContains(t, childHelp, "--verbose")
}

func TestHelpOmitsSuppressedAliasOfSharedDescriptor(t *testing.T) {
	type aliasBase struct{ Verbose bool }
	type aliasChild struct{ aliasBase }

	Attributes(&aliasBase{}, Decls{
		"Verbose": {Set("-v", Alias("--verbose"), Value(true))},
	})
	RejectInheritance(&aliasChild{}, "--verbose")

	parentHelp, err := Help(&aliasBase{})
	require.NoError(t, err)
	assert.Contains(t, parentHelp, "--verbose")

	childHelp, err := Help(&aliasChild{})
	require.NoError(t, err)
	assert.NotContains(t, childHelp, "--verbose")
	assert.Contains(t, childHelp, "-v")
}

func TestHelpBlanketRejectionListsOwnOptionsOnly(t *testing.T) {
	type quietBase struct{ Verbose bool }
	type quietChild struct {
		quietBase
		Fast bool
	}

	Attributes(&quietBase{}, Decls{"Verbose": {Set("--verbose", Value(true))}})
	RejectInheritance(&quietChild{})
	Attributes(&quietChild{}, Decls{"Fast": {Set("--fast", Value(true))}})

	help, err := Help(&quietChild{})
	require.NoError(t, err)
	assert.Contains(t, help, "--fast")
	assert.NotContains(t, help, "--verbose")
}

func TestHelpGroupOrderFollowsSortKeys(t *testing.T) {
	type groupTarget struct {
		A string
		B string
		C string
	}

	slow := NewGroup("Slow Options", "", 5)
	fast := NewGroup("Fast Options", "These run first.", 1)

	Attributes(&groupTarget{}, Decls{
		"A": {Set("--slow-opt", Type(String), InGroup(slow))},
		"B": {Set("--fast-opt", Type(String), InGroup(fast))},
		"C": {Set("--plain", Type(String))},
	})

	help, err := Help(&groupTarget{})
	require.NoError(t, err)

	fastIdx := strings.Index(help, "Fast Options:")
	slowIdx := strings.Index(help, "Slow Options:")
	plainIdx := strings.Index(help, "--plain")

	require.GreaterOrEqual(t, fastIdx, 0)
	require.GreaterOrEqual(t, slowIdx, 0)
	require.GreaterOrEqual(t, plainIdx, 0)

	assert.Less(t, fastIdx, slowIdx, "sort key 1 group renders before sort key 5 group")
	assert.Less(t, plainIdx, fastIdx, "ungrouped options render outside and ahead of group headings")
	assert.Contains(t, help, "These run first.")
}

func TestHelpOptionOrderWithinGroup(t *testing.T) {
	type orderTarget struct {
		A string
		B string
	}

	Attributes(&orderTarget{}, Decls{
		"A": {Set("--zeta", Type(String), SortKey(1))},
		"B": {Set("--alpha", Type(String), SortKey(2))},
	})

	help, err := Help(&orderTarget{})
	require.NoError(t, err)

	assert.Less(t, strings.Index(help, "--zeta"), strings.Index(help, "--alpha"),
		"lower sort key renders first regardless of name")
}

func TestAutoHelpOptionPrintsAndContinues(t *testing.T) {
	type autoHelpTarget struct{ Name string }

	Attributes(&autoHelpTarget{}, Decls{
		"Name": {Set("--name", Type(String), Describe("A name"))},
	})

	out := &bytes.Buffer{}
	cmd := &autoHelpTarget{}

	rest, err := Parse(cmd, []string{"-h", "--name", "Bob", "tail"},
		WithHelp(true), HelpOutput(out))
	require.NoError(t, err)

	assert.Contains(t, out.String(), "--name")
	assert.Contains(t, out.String(), "A name")
	assert.Equal(t, "Bob", cmd.Name)
	assert.Equal(t, []string{"tail"}, rest)
}

func TestHelpRequestWithoutAutoHelpIsUnknownOption(t *testing.T) {
	type noHelpTarget struct{ Name string }

	Attributes(&noHelpTarget{}, Decls{"Name": {Set("--name", Type(String))}})

	_, err := Parse(&noHelpTarget{}, []string{"--help"})
	require.Error(t, err)

	var inv *InvocationError
	require.ErrorAs(t, err, &inv)
	assert.Contains(t, inv.Message, "unknown")
}

func TestHelpWrapsLongDescriptions(t *testing.T) {
	type wrapTarget struct{ Name string }

	long := strings.Repeat("wordy ", 30)
	Attributes(&wrapTarget{}, Decls{
		"Name": {Set("--name", Type(String), Describe(long))},
	})

	help, err := Help(&wrapTarget{})
	require.NoError(t, err)

	for _, line := range strings.Split(help, "\n") {
		assert.LessOrEqual(t, len(line), helpColumns)
	}
}
