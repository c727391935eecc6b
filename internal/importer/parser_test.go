package importer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/portafolio-docente/portafolio-docente/internal/shared"
)

func TestParseRoster(t *testing.T) {
	data := "name,email\nMaría Quispe,MQuispe@unsaac.edu.pe\nJosé Huamán,jhuaman@unsaac.edu.pe\n"

	rows, rowErrs, err := ParseRoster(data)
	require.NoError(t, err)
	require.Empty(t, rowErrs)
	require.Len(t, rows, 2)
	require.Equal(t, "mquispe@unsaac.edu.pe", rows[0].Email)
	require.Equal(t, "María Quispe", rows[0].Name)
}

func TestParseRosterSpanishHeader(t *testing.T) {
	data := "correo,nombre\na@unsaac.edu.pe,Ana Ccama\n"

	rows, rowErrs, err := ParseRoster(data)
	require.NoError(t, err)
	require.Empty(t, rowErrs)
	require.Len(t, rows, 1)
	require.Equal(t, "Ana Ccama", rows[0].Name)
}

func TestParseRosterNormalizesDecomposedAccents(t *testing.T) {
	// "María" with the accent as a combining mark, as some spreadsheet
	// exports produce.
	decomposed := "María Quispe"
	data := "name,email\n" + decomposed + ",m@unsaac.edu.pe\n"

	rows, _, err := ParseRoster(data)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "María Quispe", rows[0].Name)
}

func TestParseRosterCollectsRowErrors(t *testing.T) {
	data := "name,email\n" +
		",missing@unsaac.edu.pe\n" +
		"No Email,not-an-email\n" +
		"Dup One,dup@unsaac.edu.pe\n" +
		"Dup Two,DUP@unsaac.edu.pe\n"

	rows, rowErrs, err := ParseRoster(data)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Len(t, rowErrs, 3)
	require.Equal(t, 2, rowErrs[0].Line)
	require.Contains(t, rowErrs[2].Message, "duplicate email")
}

func TestParseRosterRejectsBadHeader(t *testing.T) {
	_, _, err := ParseRoster("foo,bar\nx,y\n")
	require.ErrorIs(t, err, shared.ErrValidation)

	_, _, err = ParseRoster("")
	require.ErrorIs(t, err, shared.ErrValidation)
}
