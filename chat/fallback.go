package chat

import "strings"

//noMaterialsPhrases are phrases the backend uses when nothing relevant was
//found in the course material index
var noMaterialsPhrases = []string{
	"couldn't find relevant materials",
	"no relevant materials found",
	"content hasn't been uploaded yet",
}

//NoMaterialsWarning is the warning sent with "done" when the backend fell
//back to answering without course materials
const NoMaterialsWarning = "No course materials matched. Check that the correct cohort is selected."

//IsNoMaterialsFallback reports whether the assistant's answer indicates the
//backend found no relevant course materials
func IsNoMaterialsFallback(content string) bool {
	lower := strings.ToLower(content)
	for _, phrase := range noMaterialsPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
