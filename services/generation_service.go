package services

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/naeemsabir/sopcraft-api/model"
	"github.com/naeemsabir/sopcraft-api/services/llm"
	"gorm.io/gorm"
)

// PreviewLength is how many characters of generated content an unpaid SOP
// exposes through the read API
const PreviewLength = 600

var ieltsScoreRegex = regexp.MustCompile(`(\d+\.?\d*)`)

// GenerationService drives SOP drafting through the LLM gateway
type GenerationService struct {
	db        *gorm.DB
	sops      *SOPService
	generator llm.TextGenerator
}

// NewGenerationService creates a new generation service
func NewGenerationService(db *gorm.DB, sops *SOPService, generator llm.TextGenerator) *GenerationService {
	return &GenerationService{
		db:        db,
		sops:      sops,
		generator: generator,
	}
}

// Generate drafts the SOP text and stores it with status=ready. On any
// gateway or storage failure the previously stored content is left untouched
// and the caller gets ErrExternalService wrapping the cause.
//
// Regeneration is payment-gated: once content exists, a new draft requires an
// approved payment. The first generation is free.
func (g *GenerationService) Generate(ctx context.Context, userID uint, sopID uuid.UUID) (*model.SOP, error) {
	// 1. Load the SOP, owner-scoped
	sop, err := g.sops.GetByID(ctx, userID, sopID)
	if err != nil {
		return nil, err
	}

	// 2. Regeneration gate
	if sop.GeneratedContent != nil && *sop.GeneratedContent != "" && !sop.IsPaid() {
		return nil, NewValidationError("payment", "regeneration requires an approved payment")
	}

	// 3. Load decrypted sensitive details for the letter header
	details, err := g.sops.GetSensitiveDetails(ctx, userID, sopID)
	if err != nil && err != ErrNotFound {
		return nil, err
	}
	if details == nil {
		details = &SensitiveDetailsView{}
	}

	// 4. Call the gateway
	systemPrompt := buildSystemPrompt(sop, details)
	userPrompt := buildUserPrompt(sop, details)

	content, err := g.generator.GenerateText(ctx, systemPrompt, userPrompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExternalService, err)
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: gateway returned empty content", ErrExternalService)
	}

	// 5. Store content and flip status together
	result := g.db.WithContext(ctx).
		Model(&model.SOP{}).
		Where("id = ? AND user_id = ?", sopID, userID).
		Updates(map[string]interface{}{
			"generated_content": content,
			"status":            model.SOPStatusReady,
		})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to save generated content: %w", result.Error)
	}

	sop.GeneratedContent = &content
	sop.Status = model.SOPStatusReady
	return sop, nil
}

// Preview returns the content truncated for unpaid SOPs. Paid SOPs get the
// full text.
func Preview(sop *model.SOP) *string {
	if sop.GeneratedContent == nil || sop.IsPaid() {
		return sop.GeneratedContent
	}

	content := *sop.GeneratedContent
	if len(content) <= PreviewLength {
		return &content
	}

	truncated := content[:PreviewLength] + "\n\n[Unlock the full SOP by completing your payment]"
	return &truncated
}

// englishLevel calibrates the writing register to the applicant's IELTS band
func englishLevel(ieltsScore string) string {
	match := ieltsScoreRegex.FindString(ieltsScore)
	if match != "" {
		if score, err := strconv.ParseFloat(match, 64); err == nil && score >= 7 {
			return "C1 Academic English with sophisticated vocabulary"
		}
	}
	return "B2 English with clear, simple sentences"
}

// sponsorPhrase turns the stored financial background into letter wording
func sponsorPhrase(financialBackground string) string {
	switch financialBackground {
	case "Self":
		return "personal savings"
	case "Father":
		return "father"
	case "Mother":
		return "mother"
	case "Loan":
		return "education loan"
	case "":
		return "family"
	default:
		return strings.ToLower(financialBackground)
	}
}

func buildSystemPrompt(sop *model.SOP, details *SensitiveDetailsView) string {
	var b strings.Builder

	homeAddress := details.HomeAddress
	if homeAddress == "" {
		homeAddress = "[Address]"
	}
	phoneNumber := details.PhoneNumber
	if phoneNumber == "" {
		phoneNumber = "[Phone]"
	}
	fullName := sop.FullName
	if fullName == "" {
		fullName = "[Applicant Name]"
	}

	hasGapYears := sop.GapYears > 0
	hasRefusal := strings.TrimSpace(sop.VisaRefusalReason) != ""
	hasPersonalStory := len(sop.Motivation) > 50
	currentDate := time.Now().Format("January 2, 2006")

	b.WriteString(`### ROLE & IDENTITY

You are the "SOP Architect Pro," an elite academic consultant for international students (specifically focusing on applicants from Pakistan/South Asia). Your standard for quality is "Ivy League Admission." You do not just write; you strategize, draft, and then STRICTLY AUDIT your own work.

### MISSION

Your goal is to accept raw user details and transform them into a fully polished, country-specific Statement of Purpose (SOP) that requires ZERO editing.

### CRITICAL KNOWLEDGE BASE (THE RULES)

You must apply these rules automatically based on the target country:

1. **USA:** 800-1000 words. Narrative-driven. Must connect a personal "Hook" (past struggle/story) to future goals.

2. **UK:** 600-800 words. Academic & Professional focus. Less emotional, more technical (discuss specific modules/thesis).

3. **Canada/Australia:** 500-700 words. STRICT VISA FOCUS. You MUST explicitly state the "Intent to Return" to the home country to satisfy GTE/Study Permit rules.

4. **Europe (Germany/Italy/General):** 500-700 words. Direct, concise, no fluff. Focus on "Why this specific curriculum?"

### OPERATIONAL WORKFLOW

#### STEP 1: DRAFTING (The Writing Phase)

Write the SOP using this structure:

**THE HEADER:**
`)
	b.WriteString(fullName + "\n")
	b.WriteString(homeAddress + "\n")
	b.WriteString(phoneNumber + "\n")
	b.WriteString(currentDate + "\n\n")
	b.WriteString(fmt.Sprintf("To: The Visa Officer, %s Embassy.\n\n", sop.Country))

	b.WriteString("**Paragraph 1 (The Hook):** Start *in media res* (in the middle of the action). Do NOT start with \"I have always wanted to study...\". Start with a specific problem or academic spark.\n")
	if hasPersonalStory {
		b.WriteString(fmt.Sprintf("Use their personal story: %q\n\n", sop.Motivation))
	} else {
		qualification := sop.CurrentQualification
		if qualification == "" {
			qualification = "their field"
		}
		b.WriteString(fmt.Sprintf("Create a compelling opening based on their academic background in %s.\n\n", qualification))
	}

	b.WriteString("**Paragraph 2 (Academic Bridge):** Connect their undergraduate theory to practical skills.\n")
	b.WriteString(fmt.Sprintf("- Their qualification is %q. Mention it explicitly.\n", sop.CurrentQualification))
	academicScore := sop.AcademicScore
	if academicScore == "" {
		academicScore = "Not specified"
	}
	b.WriteString(fmt.Sprintf("- Academic Score: %s\n", academicScore))
	if hasGapYears {
		b.WriteString(fmt.Sprintf("- They have a %d year gap. Explain it professionally: \"During this period, I upskilled in...\"\n", sop.GapYears))
	}

	b.WriteString("\n**Paragraph 3 (Professional Proof):** Detail their work experience/academic projects. If they mention any projects or skills, quantify results where possible (e.g., \"Improved efficiency by 20%\").\n\n")

	b.WriteString("**Paragraph 4 (The Fit - \"Why This Course\"):**\n")
	b.WriteString(fmt.Sprintf("- Mention %s by name at least 3 times throughout the SOP.\n", sop.University))
	b.WriteString(fmt.Sprintf("- Mention specific modules or research areas suitable for a %s level in %s.\n", sop.DegreeLevel, sop.Course))
	b.WriteString(fmt.Sprintf("- Reference the %s's tech/industry landscape.\n", sop.Country))
	b.WriteString("- Do NOT use vague phrases like \"broaden my horizons\". Use specific phrases like \"The module on [Specific Subject] aligns with my goal to...\"\n\n")

	b.WriteString("**Paragraph 5 (Financial & Return - The Visa Winner):**\n")
	b.WriteString(fmt.Sprintf("- Mention the sponsor: \"My %s supports me financially...\"\n", sponsorPhrase(details.FinancialBackground)))
	b.WriteString("- Mention the Return Plan: \"After graduation, I intend to return to Pakistan to join the growing [Industry Name] sector. Companies like [Company A] and [Company B] are actively hiring...\"\n")
	b.WriteString("- This proves they will not stay illegally.\n\n")

	if hasRefusal {
		b.WriteString("**Paragraph 6 (Visa Refusal - Handle Carefully):**\n")
		b.WriteString("- They have a previous visa refusal. Address it positively by explaining changed circumstances and stronger documentation.\n")
		b.WriteString(fmt.Sprintf("- Details: %s\n\n", sop.VisaRefusalReason))
	}

	b.WriteString(`#### STEP 2: THE AUTOMATED QUALITY ASSURANCE (The "Double Check")

CRITICAL: Before finalizing the SOP, perform this internal checklist. If any answer is "NO", rewrite that section immediately.

1. **Cliché Check:** Did I use words like "delve," "realm," "tapestry," "passionate about," "burgeoning," "unwavering," "embark," "journey," "firstly," "secondly," "in conclusion"? -> *Action: Replace with stronger verbs.*

`)
	b.WriteString(fmt.Sprintf("2. **University Check:** Did I mention %s at least 3 times? -> *Action: Insert if missing.*\n\n", sop.University))
	b.WriteString("3. **Visa Check:** (If Canada/Australia/UK) Did I say \"I will return to Pakistan\"? -> *Action: Add sentence if missing.*\n\n")
	b.WriteString("4. **Flow Check:** Is the transition between paragraphs smooth? No bullet points - use flowing academic prose.\n\n")
	b.WriteString("5. **Word Count Check:** Does the SOP meet the country-specific word count requirement?\n\n")

	b.WriteString("### TONE RULES\n\n")
	b.WriteString("- NO AI words: Delete 'delve', 'tapestry', 'realm', 'unwavering', 'embark', 'journey', 'passionate', 'firstly', 'secondly', 'in conclusion', 'burgeoning'.\n")
	b.WriteString("- NO Bullet points in the final SOP. Use flowing academic prose.\n")
	b.WriteString(fmt.Sprintf("- Write in %s.\n\n", englishLevel(sop.IELTSScore)))

	b.WriteString("### OUTPUT FORMAT\n\nPresent the result in this EXACT format:\n\n")
	b.WriteString("**[INTERNAL QUALITY REPORT]**\n")
	b.WriteString(fmt.Sprintf("* **Target:** %s Style Applied\n", sop.Country))
	b.WriteString("* **Word Count Status:** [State if ideal range met]\n")
	b.WriteString("* **Visa Safe:** [Yes/No - Return intent included]\n")
	b.WriteString(fmt.Sprintf("* **University Mentions:** [Count of %s mentions]\n", sop.University))
	b.WriteString("* **Plagiarism Risk:** Low - Unique story integrated\n\n")
	b.WriteString("---\n\n**[FINAL STATEMENT OF PURPOSE]**\n\n(The full, polished SOP text goes here, starting with the header)")

	return b.String()
}

func buildUserPrompt(sop *model.SOP, details *SensitiveDetailsView) string {
	var b strings.Builder

	orNotProvided := func(v string) string {
		if v == "" {
			return "Not provided"
		}
		return v
	}
	orNotSpecified := func(v string) string {
		if v == "" {
			return "Not specified"
		}
		return v
	}

	hasGapYears := sop.GapYears > 0
	hasPersonalStory := len(sop.Motivation) > 50

	b.WriteString("Generate the complete Statement of Purpose now using these EXACT details:\n\n")
	b.WriteString("APPLICANT CONTACT:\n")
	b.WriteString(fmt.Sprintf("- Full Name: %s\n", orNotProvided(sop.FullName)))
	b.WriteString(fmt.Sprintf("- Address: %s\n", orNotProvided(details.HomeAddress)))
	b.WriteString(fmt.Sprintf("- Phone: %s\n", orNotProvided(details.PhoneNumber)))
	b.WriteString(fmt.Sprintf("- Email: %s\n\n", orNotProvided(sop.Email)))

	b.WriteString("TARGET:\n")
	b.WriteString(fmt.Sprintf("- Country: %s\n", sop.Country))
	b.WriteString(fmt.Sprintf("- University: %s\n", sop.University))
	b.WriteString(fmt.Sprintf("- Program: %s (%s)\n\n", sop.Course, sop.DegreeLevel))

	b.WriteString("ACADEMIC PROFILE:\n")
	b.WriteString(fmt.Sprintf("- Last Qualification: %s\n", orNotSpecified(sop.CurrentQualification)))
	b.WriteString(fmt.Sprintf("- Academic Score: %s\n", orNotSpecified(sop.AcademicScore)))
	b.WriteString(fmt.Sprintf("- English Score: %s\n", orNotSpecified(sop.IELTSScore)))
	if hasGapYears {
		b.WriteString(fmt.Sprintf("- Gap Years: %d\n", sop.GapYears))
		if sop.Motivation != "" {
			b.WriteString(fmt.Sprintf("- Gap Reason/Story: %s\n", sop.Motivation))
		}
	} else if hasPersonalStory {
		b.WriteString(fmt.Sprintf("- Personal Story/Motivation: %s\n", sop.Motivation))
	}

	b.WriteString("\nFINANCIAL & FUTURE:\n")
	sponsor := details.FinancialBackground
	if sponsor == "" {
		sponsor = "Family"
	}
	b.WriteString(fmt.Sprintf("- Sponsor: %s\n", sponsor))
	futurePlan := strings.TrimSpace(sop.FuturePlan)
	if futurePlan == "" {
		futurePlan = "Return to Pakistan and contribute to local industry"
	}
	b.WriteString(fmt.Sprintf("- Future Plan: %s\n", futurePlan))
	if refusal := strings.TrimSpace(sop.VisaRefusalReason); refusal != "" {
		b.WriteString(fmt.Sprintf("- Previous Refusal: %s\n", refusal))
	}

	b.WriteString("\nGenerate the SOP now. Include both the [INTERNAL QUALITY REPORT] and [FINAL STATEMENT OF PURPOSE] sections.")

	return b.String()
}
