package service

import (
	"bufio"
	"bytes"
	"fmt"
	"log"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/tieubaoca/contract-analysis-be/types"
)

// PageExtractor supplies the ordered page texts of a stored contract file.
type PageExtractor interface {
	ExtractPages(filePath string) ([]types.Page, error)
}

// PDFService extracts page text from PDF contracts using the poppler
// utilities (pdfinfo, pdftotext). The rest of the pipeline never touches
// PDF files; it works on the pages returned here.
type PDFService struct{}

func NewPDFService() *PDFService {
	return &PDFService{}
}

// ExtractPages reads every page of the PDF at filePath and returns its
// cleaned text in page order. Pages that yield no text are kept as empty
// entries so page numbering stays stable for citations.
func (s *PDFService) ExtractPages(filePath string) ([]types.Page, error) {
	totalPages, err := getNumPages(filePath)
	if err != nil {
		return nil, err
	}

	pages := make([]types.Page, 0, totalPages)
	for pageNum := 1; pageNum <= totalPages; pageNum++ {
		text, err := s.extractTextWithPdftotext(filePath, pageNum)
		if err != nil {
			log.Printf("Warning: failed to extract text from page %d: %v", pageNum, err)
			text = ""
		}
		pages = append(pages, types.Page{
			Number: pageNum,
			Text:   s.cleanText(text),
		})
	}
	return pages, nil
}

// extractTextWithPdftotext extracts text from a single page using pdftotext
func (s *PDFService) extractTextWithPdftotext(filepath string, pageNumber int) (string, error) {
	pdftotextCmd := exec.Command("pdftotext", "-f", strconv.Itoa(pageNumber),
		"-l", strconv.Itoa(pageNumber),
		"-enc", "UTF-8", "-nopgbrk",
		filepath, "-")
	var txtOut bytes.Buffer
	pdftotextCmd.Stdout = &txtOut

	if err := pdftotextCmd.Run(); err != nil {
		return "", fmt.Errorf("error executing pdftotext for page %d: %v", pageNumber, err)
	}
	return txtOut.String(), nil
}

// getNumPages uses pdfinfo to get the total number of pages in a PDF file
func getNumPages(pdfPath string) (int, error) {
	cmd := exec.Command("pdfinfo", pdfPath)
	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("error running pdfinfo: %v", err)
	}

	scanner := bufio.NewScanner(&out)
	re := regexp.MustCompile(`Pages:\s+(\d+)`)
	for scanner.Scan() {
		line := scanner.Text()
		if matches := re.FindStringSubmatch(line); len(matches) == 2 {
			return strconv.Atoi(matches[1])
		}
	}

	return 0, fmt.Errorf("unable to determine page count from pdfinfo")
}

func (s *PDFService) cleanText(text string) string {
	replacements := map[string]string{
		"\u0000": "",   // Null character
		"\ufffd": "",   // Unicode replacement character
		"\u001b": "",   // Escape character
		"\r":     "",   // Carriage return
		"\f":     "\n", // Form feed to newline
		"  ":     " ",  // Multiple spaces to single space
	}
	cleaned := text
	for old, new := range replacements {
		cleaned = strings.ReplaceAll(cleaned, old, new)
	}

	return strings.TrimSpace(cleaned)
}
