package app

import "quizboard-service/internal/domain"

// DefaultQuestions is the deck seeded into an empty question bank.
func DefaultQuestions() []domain.Question {
	return []domain.Question{
		{Text: "What is the capital of India?", Options: [4]string{"New Delhi", "Mumbai", "Kolkata", "Chennai"}, Correct: domain.LabelA},
		{Text: "Which language runs in a web browser?", Options: [4]string{"C", "Java", "Python", "JavaScript"}, Correct: domain.LabelD},
		{Text: "What does CPU stand for?", Options: [4]string{"Central Process Unit", "Central Processing Unit", "Control Processing Unit", "Computer Processing Unit"}, Correct: domain.LabelB},
		{Text: "Which company developed the Python language?", Options: [4]string{"Microsoft", "Apple", "PSF", "None of the above"}, Correct: domain.LabelC},
		{Text: "Which of the following is NOT a programming paradigm?", Options: [4]string{"OOP", "Functional", "Relational", "Procedural"}, Correct: domain.LabelC},
		{Text: "Who is known as the father of computers?", Options: [4]string{"Charles Babbage", "Alan Turing", "Tim Berners-Lee", "John von Neumann"}, Correct: domain.LabelA},
		{Text: "HTML stands for?", Options: [4]string{"HyperText Markup Language", "HighText Machine Language", "HyperText Markdown Language", "HyperTech Markup Language"}, Correct: domain.LabelA},
		{Text: "Which protocol is used to send emails?", Options: [4]string{"HTTP", "SMTP", "FTP", "SSH"}, Correct: domain.LabelB},
		{Text: "Which of these is a NoSQL database?", Options: [4]string{"MySQL", "PostgreSQL", "MongoDB", "SQLite"}, Correct: domain.LabelC},
		{Text: "CSS is used for?", Options: [4]string{"Structuring content", "Styling web pages", "Programming logic", "Database queries"}, Correct: domain.LabelB},
	}
}
