package utils_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aquasecurity/vuln-type-trends/utils"
)

func TestIsRemote(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{src: "cvelistV5/cves"},
		{src: "./cves"},
		{src: "/data/cvelistV5/cves"},
		{src: "https://example.com/cvelistV5.zip//cves", want: true},
		{src: "git::https://github.com/CVEProject/cvelistV5.git//cves", want: true},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assert.Equal(t, tt.want, utils.IsRemote(tt.src))
		})
	}
}

func TestLookupEnv(t *testing.T) {
	t.Setenv("VULN_TYPE_TRENDS_TEST", "targets-test.yaml")
	assert.Equal(t, "targets-test.yaml", utils.LookupEnv("VULN_TYPE_TRENDS_TEST", "targets.yaml"))
	assert.Equal(t, "targets.yaml", utils.LookupEnv("VULN_TYPE_TRENDS_UNSET", "targets.yaml"))
}

func TestExists(t *testing.T) {
	ok, err := utils.Exists("utils.go")
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = utils.Exists("unknown.go")
	assert.NoError(t, err)
	assert.False(t, ok)
}
