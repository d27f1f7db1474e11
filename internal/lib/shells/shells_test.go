package shells

import (
	"testing"

	"github.com/ImSingee/tt"
	"github.com/stretchr/testify/require"
)

func TestJoin(t *testing.T) {
	tt.AssertEqual(t, "ls -al", Join([]string{"ls", "-al"}))
	tt.AssertEqual(t, `sh -c 'ls -al'`, Join([]string{"sh", "-c", "ls -al"}))
	tt.AssertEqual(t, `'/opt/Unity Hub/2020.3.38f1'`, Quote("/opt/Unity Hub/2020.3.38f1"))
}

func TestSplit(t *testing.T) {
	args, err := Split(`installer --path "/opt/Unity Hub" --module android`)
	require.NoError(t, err)
	tt.AssertEqual(t, []string{"installer", "--path", "/opt/Unity Hub", "--module", "android"}, args)

	args, err = Split("")
	require.NoError(t, err)
	tt.AssertEqual(t, 0, len(args))
}

func TestLine(t *testing.T) {
	tt.AssertEqual(t, "installer --module android",
		Line(nil, []string{"installer", "--module", "android"}))
	tt.AssertEqual(t, `UVM_COMPONENT=android UVM_DESTINATION='/opt/Unity Hub/x' installer`,
		Line([]string{"UVM_COMPONENT=android", "UVM_DESTINATION=/opt/Unity Hub/x", "broken"}, []string{"installer"}))
	tt.AssertEqual(t, `UVM_VERSION_REVISION='' installer`,
		Line([]string{"UVM_VERSION_REVISION="}, []string{"installer"}))
}
