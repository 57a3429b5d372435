package resumes

import "resume-builder/internal/resumeapi"

const (
	defaultName = "Untitled Resume"
	defaultBio  = "Professional summary"
)

// MapPayload folds template-specific fields onto the API's normalized body.
// Empty strings count as absent.
func MapPayload(values map[string]string, photo *resumeapi.Photo) resumeapi.Payload {
	return resumeapi.Payload{
		Name:       firstNonEmpty(values, defaultName, "fullName", "name"),
		Skills:     firstNonEmpty(values, "", "keySkills", "skillsList", "skills"),
		Experience: firstNonEmpty(values, "", "workExperience", "experience"),
		Projects:   firstNonEmpty(values, "", "topProjects", "projects"),
		Bio:        firstNonEmpty(values, defaultBio, "profileSummary", "personalBio", "executiveSummary", "summary", "bio"),
		Photo:      photo,
	}
}

func firstNonEmpty(values map[string]string, fallback string, keys ...string) string {
	for _, k := range keys {
		if v := values[k]; v != "" {
			return v
		}
	}
	return fallback
}

// DisplayName returns the value used as the resume owner's name.
func DisplayName(values map[string]string) string {
	return firstNonEmpty(values, defaultName, "fullName", "name")
}
