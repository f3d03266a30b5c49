package rag

import (
	"fmt"
	"strings"
)

const contextSlot = "Konteks Dokumen:\n{context}"

const jsonReminder = "\n\nIMPORTANT: Please ensure your response is complete and valid JSON."

// The generation templates are written in Indonesian to match the exam
// material the system serves. Two variants exist because the model is
// noticeably better at hitting an exact count when the phrasing matches
// the cardinality: the singular template demands exactly one object, the
// plural one an explicit array length.
const singleQuestionTemplate = `Kamu adalah guru profesional yang ahli membuat soal ujian berkualitas tinggi.
Tugasmu adalah membuat soal seolah-olah akan dicetak langsung untuk lembar ujian siswa.

LANGKAH PERTAMA - ANALISIS LEVEL EDUKASI:
Sebelum membuat soal, analisis dokumen untuk menentukan level edukasi yang tepat berdasarkan:
- Kompleksitas vocabulary dan konsep
- Kedalaman materi yang dibahas
- Struktur kalimat dan penjelasan
- Tingkat abstraksi konsep

Level Edukasi dan Karakteristiknya:
1. TK (4-6 tahun): Konsep dasar, kata sederhana, pembelajaran melalui cerita/gambar
2. SD (7-12 tahun): Fakta konkret, penjelasan langsung, vocabulary umum
3. SMP (13-15 tahun): Konsep menengah, mulai ada analisis sederhana, vocabulary akademis dasar
4. SMA (16-18 tahun): Konsep abstrak, analisis mendalam, vocabulary akademis tinggi
5. Perguruan Tinggi (18+ tahun): Teori kompleks, analisis kritis, terminology spesialisasi

Kriteria Pembuatan Soal:
- SANGAT PENTING: Hasilkan HANYA 1 pertanyaan dan 1 jawaban.
- Sesuaikan tingkat kesulitan dan vocabulary dengan level edukasi yang terdeteksi.
- WAJIB: Setiap pertanyaan HARUS diakhiri dengan tanda tanya (?).
- Jawaban harus singkat (maksimal 3 kalimat), akurat, dan informasinya diambil dari dokumen yang diberikan.
- SANGAT PENTING: JANGAN PERNAH menyebutkan atau mereferensikan dokumen, teks, atau sumber dalam pertanyaan maupun jawaban.
- Buat pertanyaan yang berdiri sendiri seolah-olah informasinya adalah pengetahuan umum.
- Gunakan Bahasa Indonesia yang baku dan sesuai level pendidikan.

Konteks Dokumen:
{context}

PENTING:
- Tentukan level edukasi dari analisis dokumen terlebih dahulu
- Sesuaikan kompleksitas pertanyaan dengan level yang terdeteksi
- Output harus dalam format JSON valid
- Sertakan field "education_level" dalam metadata
- Array "questions" harus HANYA mengandung 1 objek pertanyaan-jawaban
- Jangan sertakan penjelasan atau teks apapun di luar format JSON

Format JSON yang dihasilkan harus PERSIS sebagai berikut:
{
  "questions": [
    {
      "question": "Pertanyaan yang disesuaikan dengan level edukasi?",
      "answer": "Jawaban yang sesuai kompleksitas level edukasi."
    }
  ],
  "metadata": {
    "count": 1,
    "education_level": "SD/SMP/SMA/Perguruan Tinggi",
    "level_reasoning": "Alasan singkat pemilihan level berdasarkan analisis dokumen",
    "status": "success"
  }
}`

const multiQuestionTemplate = `Kamu adalah guru profesional yang ahli membuat soal ujian berkualitas tinggi.
Tugasmu adalah membuat soal seolah-olah akan dicetak langsung untuk lembar ujian siswa.

LANGKAH PERTAMA - ANALISIS LEVEL EDUKASI:
Sebelum membuat soal, analisis dokumen untuk menentukan level edukasi yang tepat berdasarkan:
- Kompleksitas vocabulary dan konsep
- Kedalaman materi yang dibahas
- Struktur kalimat dan penjelasan
- Tingkat abstraksi konsep

Level Edukasi dan Karakteristiknya:
1. TK (4-6 tahun): Konsep dasar, kata sederhana, pembelajaran melalui cerita/gambar
2. SD (7-12 tahun): Fakta konkret, penjelasan langsung, vocabulary umum
3. SMP (13-15 tahun): Konsep menengah, mulai ada analisis sederhana, vocabulary akademis dasar
4. SMA (16-18 tahun): Konsep abstrak, analisis mendalam, vocabulary akademis tinggi
5. Perguruan Tinggi (18+ tahun): Teori kompleks, analisis kritis, terminology spesialisasi

Kriteria Pembuatan Soal:
- Hasilkan TEPAT {num_questions} pasangan pertanyaan dan jawaban yang berbeda-beda.
- Sesuaikan tingkat kesulitan dan vocabulary dengan level edukasi yang terdeteksi.
- WAJIB: Setiap pertanyaan HARUS diakhiri dengan tanda tanya (?).
- Jawaban harus singkat (maksimal 3 kalimat), akurat, dan informasinya diambil dari dokumen yang diberikan.
- SANGAT PENTING: JANGAN PERNAH menyebutkan atau mereferensikan dokumen, teks, atau sumber dalam pertanyaan maupun jawaban.
- Buat pertanyaan yang berdiri sendiri seolah-olah informasinya adalah pengetahuan umum.
- Gunakan Bahasa Indonesia yang baku dan sesuai level pendidikan.
- Buat pertanyaan yang beragam dan tidak repetitif.

Konteks Dokumen:
{context}

PENTING:
- Tentukan level edukasi dari analisis dokumen terlebih dahulu
- Sesuaikan kompleksitas semua pertanyaan dengan level yang terdeteksi
- Output harus dalam format JSON valid
- Sertakan field "education_level" dalam metadata
- Array "questions" harus mengandung TEPAT {num_questions} objek
- Jangan sertakan penjelasan atau teks apapun di luar format JSON

Format JSON yang dihasilkan harus sebagai berikut:
{
  "questions": [
    {
      "question": "Pertanyaan 1 yang disesuaikan dengan level edukasi?",
      "answer": "Jawaban 1 yang sesuai kompleksitas level edukasi."
    },
    {
      "question": "Pertanyaan 2 yang disesuaikan dengan level edukasi?",
      "answer": "Jawaban 2 yang sesuai kompleksitas level edukasi."
    }
  ],
  "metadata": {
    "count": {num_questions},
    "education_level": "SD/SMP/SMA/Perguruan Tinggi",
    "level_reasoning": "Alasan singkat pemilihan level berdasarkan analisis dokumen",
    "status": "success"
  }
}`

// BuildPrompt renders the grounded generation prompt with the retrieved
// context interpolated in.
func BuildPrompt(numQuestions int, targetOutcome, keyword, context string) string {
	template := baseTemplate(numQuestions, targetOutcome)
	prompt := strings.Replace(template, "{context}", context, 1)
	return finishPrompt(prompt, numQuestions, keyword)
}

// BuildTopicPrompt renders the context-free variant: the context slot is
// swapped for an explicit generate-about-topic instruction.
func BuildTopicPrompt(numQuestions int, targetOutcome, keyword, topic string) string {
	template := baseTemplate(numQuestions, targetOutcome)
	topicInstruction := fmt.Sprintf("Buat %d pasang pertanyaan dan jawaban tentang topik: %q", numQuestions, topic)
	prompt := strings.Replace(template, contextSlot, topicInstruction, 1)
	return finishPrompt(prompt, numQuestions, keyword)
}

func baseTemplate(numQuestions int, targetOutcome string) string {
	template := multiQuestionTemplate
	if numQuestions == 1 {
		template = singleQuestionTemplate
	}
	if targetOutcome != "" {
		pin := fmt.Sprintf(
			"TARGET LEVEL EDUKASI: %s\n"+
				"- Buat SEMUA soal pada level ini, abaikan level hasil analisis.\n"+
				"- Jika materi dokumen jelas melebihi level ini, kembalikan JSON dengan status \"error\" dan jelaskan alasannya di field \"message\".\n\n",
			targetOutcome,
		)
		template = pin + template
	}
	return template
}

func finishPrompt(prompt string, numQuestions int, keyword string) string {
	prompt = strings.ReplaceAll(prompt, "{num_questions}", fmt.Sprintf("%d", numQuestions))
	if keyword != "" {
		prompt = fmt.Sprintf("FOKUS PADA KATA KUNCI: '%s'\n\n", keyword) + prompt
	}
	return prompt + jsonReminder
}
