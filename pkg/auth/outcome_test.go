package auth

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/scalarweb/scalarweb-go/pkg/scalarweb"
)

func TestOutcomeTerminal(t *testing.T) {
	assert.True(t, OutcomeOK.Terminal())
	assert.True(t, OutcomeServiceMissing.Terminal())
	assert.True(t, OutcomeDisplayOff.Terminal())
	assert.True(t, Other("device exploded").Terminal())
	assert.False(t, OutcomeNeedsPairing.Terminal(), "pairing triggers a follow-up, it must not be terminal")
}

func TestOutcomeBlankAccessCode(t *testing.T) {
	o := BlankAccessCode()
	assert.True(t, o.Is(KindOther))
	assert.Equal(t, MessageBlankAccessCode, o.Message())
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "OK", OutcomeOK.String())
	assert.Equal(t, "NEEDS_PAIRING", OutcomeNeedsPairing.String())
	assert.Equal(t, "OTHER: device exploded", Other("device exploded").String())
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		res  *scalarweb.Result
		want Kind
	}{
		{"http 200 success", jsonResult(t, `{"id":1,"result":[{"isOn":true}]}`), KindOK},
		{"bare http 200", statusResult(http.StatusOK), KindOK},
		{"illegal argument proves access", errorResult(t, 3), KindOK},
		{"display off", errorResult(t, 40005), KindDisplayOff},
		{"forbidden tuple", errorResult(t, 403), KindNeedsPairing},
		{"unauthorized tuple", errorResult(t, 401), KindNeedsPairing},
		{"not implemented tuple", errorResult(t, 501), KindNeedsPairing},
		{"raw http 401", statusResult(http.StatusUnauthorized), KindNeedsPairing},
		{"raw http 403", statusResult(http.StatusForbidden), KindNeedsPairing},
		{"illegal state is unexpected", errorResult(t, 7), KindOther},
		{"raw http 500", statusResult(http.StatusInternalServerError), KindOther},
		{"raw http 503", statusResult(http.StatusServiceUnavailable), KindOther},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.res).Kind())
		})
	}
}

// TestClassifyPrecedence exercises results whose two status channels
// disagree; the earlier rule must win.
func TestClassifyPrecedence(t *testing.T) {
	// Display-off tuple over a 403 exchange: display-off wins.
	res, err := scalarweb.ParseResult(http.StatusForbidden, []byte(`{"id":1,"error":[40005,"Display Is Turned Off"]}`))
	assert.NoError(t, err)
	assert.Equal(t, KindDisplayOff, Classify(res).Kind())

	// Illegal-argument tuple over a 403 exchange: proof of access wins.
	res, err = scalarweb.ParseResult(http.StatusForbidden, []byte(`{"id":1,"error":[3,"Illegal Argument"]}`))
	assert.NoError(t, err)
	assert.Equal(t, KindOK, Classify(res).Kind())

	// A forbidden tuple rides on a 200 exchange: the tuple decides.
	res, err = scalarweb.ParseResult(http.StatusOK, []byte(`{"id":1,"error":[403,"Forbidden"]}`))
	assert.NoError(t, err)
	assert.Equal(t, KindNeedsPairing, Classify(res).Kind())
}
