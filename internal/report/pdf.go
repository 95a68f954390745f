// go-server/internal/report/pdf.go
//
// PDF rendering of the report, one line per metric. Core Helvetica only
// handles cp1252, so user-entered text goes through the unicode
// translator before hitting the page.

package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
)

// PDF renders the report as a single-column A4 document.
func PDF(r Report) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetAutoPageBreak(true, 15)
	pdf.SetFont("Helvetica", "", 12)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	line := func(txt string, gap float64) {
		pdf.CellFormat(0, gap, tr(txt), "", 1, "L", false, 0, "")
	}

	mode := "Real"
	if r.SafeMode {
		mode = "Aula Segura"
	}

	line("CyberCommand: Missao Teclado - Relatorio", 10)
	line(fmt.Sprintf("Gerado em: %s", r.GeneratedAt), 8)
	line(fmt.Sprintf("Turma/Grupo: %s", r.Group), 8)
	line(fmt.Sprintf("Alunos: %s", strings.Join(r.Students, ", ")), 8)
	line(fmt.Sprintf("Modo: %s", mode), 8)
	line(fmt.Sprintf("Missoes: %d/%d", r.MissionsCompleted, r.MissionsTotal), 8)
	line(fmt.Sprintf("XP Total: %d", r.TotalXP), 8)
	line(fmt.Sprintf("Duracao: %d segundos", r.DurationSec), 10)
	line("Desempenho por jogador:", 10)

	for _, p := range r.Players {
		line(fmt.Sprintf("Jogador %d -> XP %d | Acertos %d | Tentativas %d | Erros %d",
			p.ID, p.XP, p.Hits, p.Attempts, p.Errors), 8)
		line(fmt.Sprintf("Precisao %.1f%% | Tempo medio %.2fs | Velocidade %.2f missoes/min",
			p.Accuracy, p.AvgTime, p.Velocity), 8)
		line(fmt.Sprintf("Fases: F1 %d | F2 %d | F3 %d | F4 %d | F5 %d",
			p.F1, p.F2, p.F3, p.F4, p.F5), 10)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("report: render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
