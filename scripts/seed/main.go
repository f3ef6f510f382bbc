// Command seed initializes a running grading API with the default weight
// configuration and grade band table, and optionally a few sample marks.
// Intended for local development against a fresh database.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

type weightPayload struct {
	MidtermWeight int `json:"midterm_weight"`
	ClassWeight   int `json:"class_weight"`
	ExamWeight    int `json:"exam_weight"`
}

type bandPayload struct {
	MinMark int    `json:"min_mark"`
	MaxMark int    `json:"max_mark"`
	Letter  string `json:"letter"`
	Remark  string `json:"remark"`
}

type markPayload struct {
	StudentID      string    `json:"student_id"`
	SubjectID      string    `json:"subject_id"`
	ClassID        string    `json:"class_id"`
	TermID         string    `json:"term_id"`
	AcademicYearID string    `json:"academic_year_id"`
	ComponentType  string    `json:"component_type"`
	RawMarks       []float64 `json:"raw_marks"`
}

func main() {
	base := flag.String("base", "http://localhost:8080/api/v1", "API base URL")
	withMarks := flag.Bool("marks", false, "also record sample marks")
	flag.Parse()

	client := &http.Client{Timeout: 10 * time.Second}

	weights := weightPayload{MidtermWeight: 30, ClassWeight: 30, ExamWeight: 40}
	if err := send(client, http.MethodPut, *base+"/weights", weights); err != nil {
		log.Fatalf("seed weights: %v", err)
	}
	log.Println("weights configured 30/30/40")

	bands := map[string][]bandPayload{"bands": {
		{MinMark: 0, MaxMark: 49, Letter: "E", Remark: "Fail"},
		{MinMark: 50, MaxMark: 59, Letter: "D", Remark: "Pass"},
		{MinMark: 60, MaxMark: 69, Letter: "C", Remark: "Credit"},
		{MinMark: 70, MaxMark: 79, Letter: "B", Remark: "Good"},
		{MinMark: 80, MaxMark: 100, Letter: "A", Remark: "Excellent"},
	}}
	if err := send(client, http.MethodPut, *base+"/grade-bands", bands); err != nil {
		log.Fatalf("seed grade bands: %v", err)
	}
	log.Println("grade bands configured")

	if !*withMarks {
		return
	}
	samples := []markPayload{
		{StudentID: "student-1", SubjectID: "subject-math", ClassID: "class-10a", TermID: "term-1", AcademicYearID: "2026", ComponentType: "midterm", RawMarks: []float64{80}},
		{StudentID: "student-1", SubjectID: "subject-math", ClassID: "class-10a", TermID: "term-1", AcademicYearID: "2026", ComponentType: "class_score", RawMarks: []float64{40, 50}},
		{StudentID: "student-1", SubjectID: "subject-math", ClassID: "class-10a", TermID: "term-1", AcademicYearID: "2026", ComponentType: "exam_score", RawMarks: []float64{70}},
		{StudentID: "student-2", SubjectID: "subject-math", ClassID: "class-10a", TermID: "term-1", AcademicYearID: "2026", ComponentType: "exam_score", RawMarks: []float64{85}},
	}
	for _, mark := range samples {
		if err := send(client, http.MethodPost, *base+"/marks", mark); err != nil {
			log.Fatalf("seed mark for %s/%s: %v", mark.StudentID, mark.ComponentType, err)
		}
	}
	log.Printf("recorded %d sample marks", len(samples))
}

func send(client *http.Client, method, url string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s %s: %d %s", method, url, resp.StatusCode, bytes.TrimSpace(data))
	}
	return nil
}
