package feedback

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RevCBH/skill-harness/internal/criteria"
	"github.com/RevCBH/skill-harness/internal/evaluator"
)

const doc = `# Blob Storage

## Authentication

### ❌ Incorrect

~~~python
from azure.storage.blob import BlobServiceClient

client = BlobServiceClient(url, credential="account-key")
~~~

### ✅ Correct

~~~python
from azure.identity import DefaultAzureCredential
from azure.storage.blob import BlobServiceClient

client = BlobServiceClient(url, credential=DefaultAzureCredential())
~~~

## Uploads

### ✅ Correct

~~~python
blob.upload_blob(data, overwrite=True)
~~~
`

func setup(t *testing.T) (*criteria.Set, *evaluator.Evaluator, *Builder) {
	t.Helper()
	set, err := criteria.Parse("azure-storage-blob-py", "doc.md", []byte(doc))
	require.NoError(t, err)
	return set, evaluator.New(set), New(set)
}

func TestBuild_EmptyFindings(t *testing.T) {
	_, _, b := setup(t)

	r := evaluator.NewResult("s", "x", nil, nil, nil)
	assert.Equal(t, "", b.Build(r))
}

func TestBuild_InfoOnlyFindings(t *testing.T) {
	_, e, b := setup(t)

	r := e.Evaluate("print('unrelated')\n", evaluator.Expectations{})
	require.Equal(t, 1, r.Count(evaluator.SeverityInfo))
	require.Len(t, r.Findings(), 1)

	assert.Equal(t, "", b.Build(r))
}

func TestBuild_PatternFindingShowsNearestCorrect(t *testing.T) {
	_, e, b := setup(t)

	code := "from azure.storage.blob import BlobServiceClient\n\nclient = BlobServiceClient(url, credential=\"account-key\")\n"
	r := e.Evaluate(code, evaluator.Expectations{Scenario: "auth"})
	require.False(t, r.Passed())

	out := b.Build(r)

	assert.Contains(t, out, "ERRORS (must fix):")
	assert.Contains(t, out, "Fix this incorrect usage (Authentication)")
	assert.Contains(t, out, `> client = BlobServiceClient(url, credential="account-key")`)
	assert.Contains(t, out, "credential=DefaultAzureCredential()")
	assert.NotContains(t, out, "upload_blob")
	assert.True(t, strings.HasSuffix(out, "Score: 70/100 (FAILED)"), out)
}

func TestBuild_OrdersBySeverityThenGroup(t *testing.T) {
	_, _, b := setup(t)

	r := evaluator.NewResult("s", "code", []evaluator.Finding{
		{Severity: evaluator.SeverityWarning, Rule: evaluator.RuleFormat, Message: "fenced"},
		{Severity: evaluator.SeverityInfo, Rule: evaluator.RuleCoverage, Message: "nothing recognized"},
		{Severity: evaluator.SeverityError, Rule: evaluator.RuleExpected, Message: "missing", Snippet: "DefaultAzureCredential"},
		{Severity: evaluator.SeverityError, Rule: evaluator.RuleForbidden, Message: "present", Snippet: "account_key"},
		{Severity: evaluator.SeverityError, Rule: evaluator.RulePattern, Message: "bad", Snippet: "bad()"},
	}, nil, nil)

	out := b.Build(r)

	pattern := strings.Index(out, "> bad()")
	expected := strings.Index(out, "must contain `DefaultAzureCredential`")
	forbidden := strings.Index(out, "Remove `account_key`")
	warnings := strings.Index(out, "WARNINGS (should fix):")
	fenced := strings.Index(out, "without markdown code fences")

	for _, idx := range []int{pattern, expected, forbidden, warnings, fenced} {
		require.GreaterOrEqual(t, idx, 0, out)
	}
	assert.Less(t, pattern, expected)
	assert.Less(t, expected, forbidden)
	assert.Less(t, forbidden, warnings)
	assert.Less(t, warnings, fenced)
	assert.NotContains(t, out, "nothing recognized")
	assert.True(t, strings.HasSuffix(out, "(FAILED)"))
}

func TestBuild_IsDeterministic(t *testing.T) {
	_, e, b := setup(t)

	r := e.Evaluate("from azure.storage.blob import BlobServiceClient\nclient = BlobServiceClient(url, credential=\"account-key\")\n", evaluator.Expectations{})
	assert.Equal(t, b.Build(r), b.Build(r))
}

func TestBuild_PassedWithWarnings(t *testing.T) {
	_, _, b := setup(t)

	r := evaluator.NewResult("s", "code", []evaluator.Finding{
		{Severity: evaluator.SeverityWarning, Rule: evaluator.RuleFormat, Message: "fenced"},
	}, nil, nil)

	out := b.Build(r)
	assert.NotContains(t, out, "ERRORS")
	assert.True(t, strings.HasSuffix(out, "Score: 95/100 (PASSED)"))
}

func TestNearest(t *testing.T) {
	set, _, b := setup(t)

	got := b.Nearest(set.IncorrectPatterns[0])
	require.NotNil(t, got)
	assert.Equal(t, "Authentication", got.Section)

	assert.Nil(t, b.Nearest(nil))

	empty := New(&criteria.Set{})
	assert.Nil(t, empty.Nearest(set.IncorrectPatterns[0]))
}

func TestNearest_ProximityBreaksTies(t *testing.T) {
	far := &criteria.CodePattern{Code: "zzz_one()", Kind: criteria.KindCorrect, Index: 0}
	near := &criteria.CodePattern{Code: "yyy_two()", Kind: criteria.KindCorrect, Index: 4}
	target := &criteria.CodePattern{Code: "xxx_three()", Kind: criteria.KindIncorrect, Index: 5}
	set := &criteria.Set{
		CorrectPatterns:   []*criteria.CodePattern{far, near},
		IncorrectPatterns: []*criteria.CodePattern{target},
	}

	assert.Same(t, near, New(set).Nearest(target))
}
