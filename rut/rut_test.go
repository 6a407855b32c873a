package rut_test

import (
	"strconv"
	"strings"
	"testing"

	"github.com/jrsteele09/seniorinteract/internal/errors"
	"github.com/jrsteele09/seniorinteract/rut"
	"github.com/stretchr/testify/require"
)

func TestComputeCheckDigit(t *testing.T) {
	t.Run("eight digit body", func(t *testing.T) {
		d, err := rut.ComputeCheckDigit("12345678")
		require.NoError(t, err)
		require.Equal(t, byte('5'), d)
	})

	t.Run("single digit body", func(t *testing.T) {
		// weight 2 -> sum 14 -> remainder 3 -> 8
		d, err := rut.ComputeCheckDigit("7")
		require.NoError(t, err)
		require.Equal(t, byte('8'), d)
	})

	t.Run("result eleven maps to zero", func(t *testing.T) {
		// 0*2 = 0 -> remainder 0 -> 11
		d, err := rut.ComputeCheckDigit("0")
		require.NoError(t, err)
		require.Equal(t, byte('0'), d)
	})

	t.Run("result ten maps to K", func(t *testing.T) {
		// 6*2 = 12 -> remainder 1 -> 10
		d, err := rut.ComputeCheckDigit("6")
		require.NoError(t, err)
		require.Equal(t, byte('K'), d)
	})

	t.Run("weights wrap after seven", func(t *testing.T) {
		// 1 at the seventh position from the right is weighted 2 again
		d, err := rut.ComputeCheckDigit("1000000")
		require.NoError(t, err)
		// sum 2 -> remainder 2 -> 9
		require.Equal(t, byte('9'), d)
	})

	t.Run("empty body", func(t *testing.T) {
		_, err := rut.ComputeCheckDigit("")
		require.ErrorIs(t, err, errors.ErrInvalidFormat)
	})

	t.Run("non digit body", func(t *testing.T) {
		_, err := rut.ComputeCheckDigit("12a4")
		require.ErrorIs(t, err, errors.ErrInvalidFormat)
	})

	t.Run("deterministic over bodies of length one to eight", func(t *testing.T) {
		for length := 1; length <= 8; length++ {
			for seed := 0; seed < 50; seed++ {
				body := strings.Repeat(strconv.Itoa(seed%10), length)
				body = body[:length-1] + strconv.Itoa((seed*7)%10)
				first, err := rut.ComputeCheckDigit(body)
				require.NoError(t, err)
				second, err := rut.ComputeCheckDigit(body)
				require.NoError(t, err)
				require.Equal(t, first, second)
				require.True(t, (first >= '0' && first <= '9') || first == 'K', "unexpected check digit %q for %s", first, body)
			}
		}
	})
}

func TestParse(t *testing.T) {
	t.Run("valid shape", func(t *testing.T) {
		v, err := rut.Parse("12345678-5")
		require.NoError(t, err)
		require.Equal(t, "12345678", v.Body)
		require.Equal(t, byte('5'), v.CheckDigit)
	})

	t.Run("lowercase k is canonicalised", func(t *testing.T) {
		v, err := rut.Parse("6-k")
		require.NoError(t, err)
		require.Equal(t, byte('K'), v.CheckDigit)
		require.Equal(t, "6-K", v.String())
	})

	t.Run("empty string", func(t *testing.T) {
		_, err := rut.Parse("")
		require.ErrorIs(t, err, errors.ErrInvalidFormat)
	})

	t.Run("missing separator", func(t *testing.T) {
		_, err := rut.Parse("123456785")
		require.ErrorIs(t, err, errors.ErrInvalidFormat)
	})

	t.Run("grouping dots are not accepted", func(t *testing.T) {
		_, err := rut.Parse("12.345.678-5")
		require.ErrorIs(t, err, errors.ErrInvalidFormat)
	})

	t.Run("two character check", func(t *testing.T) {
		_, err := rut.Parse("1234-55")
		require.ErrorIs(t, err, errors.ErrInvalidFormat)
	})
}

func TestValidate(t *testing.T) {
	require.True(t, rut.Validate("12345678-5"))
	require.False(t, rut.Validate("12345678-4"))
	require.True(t, rut.Validate("7-8"))
	require.True(t, rut.Validate("6-K"))
	require.True(t, rut.Validate("6-k"))
	require.False(t, rut.Validate(""))
	require.False(t, rut.Validate("abc"))
}

func TestFormat(t *testing.T) {
	t.Run("groups body by thousands", func(t *testing.T) {
		require.Equal(t, "12.345.678-5", rut.Format("123456785"))
		require.Equal(t, "12.345.678-5", rut.Format("12345678-5"))
		require.Equal(t, "1.234.567-4", rut.Format("1234567-4"))
		require.Equal(t, "123.456-7", rut.Format("1234567"))
	})

	t.Run("single digit body has no separators", func(t *testing.T) {
		require.Equal(t, "7-8", rut.Format("78"))
	})

	t.Run("short input returned as is", func(t *testing.T) {
		require.Equal(t, "", rut.Format(""))
		require.Equal(t, "7", rut.Format("7"))
		require.Equal(t, "", rut.Format("--"))
	})

	t.Run("strips foreign characters", func(t *testing.T) {
		require.Equal(t, "12.345.678-5", rut.Format(" 12 345 678 / 5 "))
	})

	t.Run("check digit uppercased", func(t *testing.T) {
		require.Equal(t, "6-K", rut.Format("6k"))
	})

	t.Run("idempotent", func(t *testing.T) {
		for _, in := range []string{"123456785", "12.345.678-5", "6k", "1", "", "1234567890-k", "x9y8"} {
			once := rut.Format(in)
			require.Equal(t, once, rut.Format(once), "input %q", in)
		}
	})

	t.Run("formatting preserves validity", func(t *testing.T) {
		for _, in := range []string{"12345678-5", "12345678-4", "7-8", "6-k", "1000000-9", "1000000-1"} {
			stripped := strings.ReplaceAll(rut.Format(in), ".", "")
			require.Equal(t, rut.Validate(in), rut.Validate(stripped), "input %q", in)
		}
	})
}

func TestValue_RoundTrip(t *testing.T) {
	v, err := rut.Parse("12345678-5")
	require.NoError(t, err)
	require.Equal(t, "12.345.678-5", v.Formatted())

	back, err := rut.Parse(strings.ReplaceAll(v.Formatted(), ".", ""))
	require.NoError(t, err)
	require.Equal(t, v, back)
	require.True(t, back.Valid())
}
