package session_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/instill-ai/hashcash-client/session"
)

func TestNormSessionEdition_Valid(t *testing.T) {
	editions := []string{"local-ce", "local-ce:dev"}
	for _, e := range editions {
		normEdition := session.NormSessionEdition(e)

		require.Equal(t, e, normEdition)
	}
}

func TestNormSessionEdition_Invalid(t *testing.T) {
	edition := "invalid-edition"
	normEdition := session.NormSessionEdition(edition)

	require.Equal(t, session.DefaultSessionEdition, normEdition)
}

func TestSession_Resource(t *testing.T) {
	reportTime := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	s := session.Session{Edition: "local-ce", Version: "v0.1.0", ReportTime: timestamppb.New(reportTime)}

	base, err := s.Hash()
	require.NoError(t, err)
	require.Len(t, base, 44)

	resource, err := s.Resource("token-")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(resource, "token-"))
	require.Equal(t, "token-"+base, resource)

	other := session.Session{Edition: "local-ce", Version: "v0.2.0", ReportTime: timestamppb.New(reportTime)}
	otherBase, err := other.Hash()
	require.NoError(t, err)
	require.NotEqual(t, base, otherBase)
}

func TestSession_Expired(t *testing.T) {
	reportTime := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	s := session.Session{ReportTime: timestamppb.New(reportTime)}

	require.False(t, s.Expired(reportTime.Add(30*time.Second), time.Minute))
	require.True(t, s.Expired(reportTime.Add(2*time.Minute), time.Minute))
	require.True(t, (&session.Session{}).Expired(reportTime, time.Minute))
}
