package rag

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildPrompt_SingularPhrasingForOneQuestion(t *testing.T) {
	prompt := BuildPrompt(1, "", "sel", "konteks biologi")
	require.Contains(t, prompt, "HANYA 1 pertanyaan")
	require.NotContains(t, prompt, "{num_questions}")
	require.Contains(t, prompt, "konteks biologi")
	require.True(t, strings.HasPrefix(prompt, "FOKUS PADA KATA KUNCI: 'sel'\n\n"))
	require.True(t, strings.HasSuffix(prompt, "complete and valid JSON."))
}

func TestBuildPrompt_PluralPhrasingCarriesExactCount(t *testing.T) {
	prompt := BuildPrompt(5, "", "", "konteks")
	require.Contains(t, prompt, "TEPAT 5 pasangan")
	require.Contains(t, prompt, "TEPAT 5 objek")
	require.NotContains(t, prompt, "{num_questions}")
	require.NotContains(t, prompt, "FOKUS PADA KATA KUNCI")
}

func TestBuildPrompt_ContextInterpolatedOnce(t *testing.T) {
	prompt := BuildPrompt(3, "", "", "ISI-KONTEKS")
	require.Equal(t, 1, strings.Count(prompt, "ISI-KONTEKS"))
	require.NotContains(t, prompt, "{context}")
}

func TestBuildPrompt_TargetOutcomePinned(t *testing.T) {
	prompt := BuildPrompt(2, "SMA", "", "konteks")
	require.Contains(t, prompt, "TARGET LEVEL EDUKASI: SMA")
}

func TestBuildTopicPrompt_ReplacesContextSlot(t *testing.T) {
	prompt := BuildTopicPrompt(3, "", "newton", "hukum newton")
	require.NotContains(t, prompt, "Konteks Dokumen")
	require.NotContains(t, prompt, "{context}")
	require.Contains(t, prompt, `Buat 3 pasang pertanyaan dan jawaban tentang topik: "hukum newton"`)
	require.Contains(t, prompt, "FOKUS PADA KATA KUNCI: 'newton'")
}

func TestBuildPrompt_DeclaresJSONSchema(t *testing.T) {
	prompt := BuildPrompt(2, "", "", "konteks")
	require.Contains(t, prompt, `"questions"`)
	require.Contains(t, prompt, `"question"`)
	require.Contains(t, prompt, `"answer"`)
	require.Contains(t, prompt, `"education_level"`)
	require.Contains(t, prompt, `"status"`)
}
