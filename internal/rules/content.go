package rules

import "literacytrack/internal/models"

// bandContent is the fixed content for every band of one category
type bandContent struct {
	mastery Content
	low     Content
	midLow  Content
	midHigh Content
}

var categoryContent = map[models.Category]bandContent{
	models.CategoryAlphabetKnowledge: {
		mastery: Content{
			Strengths: []string{
				"Identifies all upper- and lowercase letters quickly and accurately",
				"Matches letters to their sounds without hesitation",
			},
			Recommendations: []string{
				"Apply letter-sound knowledge to spelling and word building",
				"Move to phonics patterns such as blends and digraphs",
			},
		},
		low: Content{
			Weaknesses: []string{
				"Recognizes few letters by name or shape",
				"Confuses visually similar letters (b/d, p/q)",
				"Has not yet connected letters to their sounds",
			},
			Recommendations: []string{
				"Daily explicit instruction on a small set of letters at a time",
				"Use multisensory letter formation (tracing, sand, air writing)",
				"Practice letter names with songs and alphabet charts",
			},
		},
		midLow: Content{
			Strengths: []string{
				"Recognizes some familiar letters, especially those in own name",
			},
			Weaknesses: []string{
				"Inconsistent recognition of lowercase letters",
				"Letter-sound correspondence is incomplete",
			},
			Recommendations: []string{
				"Review unknown letters with flashcards and letter sorts",
				"Pair each letter with a keyword picture for its sound",
			},
		},
		midHigh: Content{
			Strengths: []string{
				"Recognizes most uppercase and lowercase letters",
				"Knows the sounds of most consonants",
			},
			Weaknesses: []string{
				"Occasional confusion with short vowel sounds",
			},
			Recommendations: []string{
				"Target remaining unknown letters in short daily reviews",
				"Practice vowel sounds through word families",
			},
		},
	},
	models.CategoryPhonologicalAwareness: {
		mastery: Content{
			Strengths: []string{
				"Segments and blends phonemes in spoken words accurately",
				"Manipulates sounds to form new words",
			},
			Recommendations: []string{
				"Connect phonemic skills to decoding and spelling tasks",
				"Introduce multisyllabic word analysis",
			},
		},
		low: Content{
			Weaknesses: []string{
				"Difficulty hearing rhymes and syllables in spoken words",
				"Cannot yet isolate beginning sounds",
			},
			Recommendations: []string{
				"Daily rhyming and syllable clapping games",
				"Practice identifying first sounds in familiar words",
				"Use picture sorts by beginning sound",
			},
		},
		midLow: Content{
			Strengths: []string{
				"Recognizes rhyming words and counts syllables",
			},
			Weaknesses: []string{
				"Difficulty blending individual sounds into words",
				"Struggles to segment words into phonemes",
			},
			Recommendations: []string{
				"Oral blending practice with two- and three-phoneme words",
				"Use Elkonin boxes for sound segmentation",
			},
		},
		midHigh: Content{
			Strengths: []string{
				"Blends and segments most simple words",
				"Identifies beginning and ending sounds",
			},
			Weaknesses: []string{
				"Sound deletion and substitution are not yet reliable",
			},
			Recommendations: []string{
				"Practice phoneme deletion and substitution games",
				"Extend segmentation to words with consonant blends",
			},
		},
	},
	models.CategoryWordRecognition: {
		mastery: Content{
			Strengths: []string{
				"Reads high-frequency words automatically",
				"Recognizes grade-level sight words in connected text",
			},
			Recommendations: []string{
				"Expand vocabulary with content-area words",
				"Build fluency through repeated reading of varied texts",
			},
		},
		low: Content{
			Weaknesses: []string{
				"Recognizes very few high-frequency words by sight",
				"Relies on guessing from pictures or first letters",
			},
			Recommendations: []string{
				"Teach a small set of high-frequency words each week",
				"Use word walls and repeated exposure in simple texts",
				"Practice sight words with games and flashcards",
			},
		},
		midLow: Content{
			Strengths: []string{
				"Recognizes some common sight words",
			},
			Weaknesses: []string{
				"Sight word recognition is slow and inconsistent",
				"Confuses words with similar spelling",
			},
			Recommendations: []string{
				"Timed sight word drills to build automaticity",
				"Read decodable and patterned texts daily",
			},
		},
		midHigh: Content{
			Strengths: []string{
				"Reads most high-frequency words accurately",
				"Uses word recognition to support reading of simple texts",
			},
			Weaknesses: []string{
				"Hesitates on less common or irregular words",
			},
			Recommendations: []string{
				"Introduce irregular words in meaningful context",
				"Use partner reading to build speed and confidence",
			},
		},
	},
	models.CategoryDecoding: {
		mastery: Content{
			Strengths: []string{
				"Decodes unfamiliar words using phonics patterns",
				"Reads multisyllabic words accurately",
			},
			Recommendations: []string{
				"Apply decoding skills to increasingly complex texts",
				"Study morphology such as prefixes, suffixes and roots",
			},
		},
		low: Content{
			Weaknesses: []string{
				"Cannot yet sound out simple CVC words",
				"Does not apply letter-sound knowledge when reading",
			},
			Recommendations: []string{
				"Explicit, systematic phonics instruction with CVC words",
				"Use sound-by-sound blending routines",
				"Read decodable texts matched to taught patterns",
			},
		},
		midLow: Content{
			Strengths: []string{
				"Decodes some simple CVC words",
			},
			Weaknesses: []string{
				"Difficulty with blends, digraphs and long vowel patterns",
				"Decoding is slow and effortful",
			},
			Recommendations: []string{
				"Targeted practice with blends and digraphs",
				"Word building activities with letter tiles",
			},
		},
		midHigh: Content{
			Strengths: []string{
				"Decodes most single-syllable words accurately",
				"Applies common phonics patterns",
			},
			Weaknesses: []string{
				"Struggles with multisyllabic words and vowel teams",
			},
			Recommendations: []string{
				"Teach syllable division strategies",
				"Practice vowel team patterns in connected text",
			},
		},
	},
	models.CategoryReadingComprehension: {
		mastery: Content{
			Strengths: []string{
				"Understands literal and inferential meaning of grade-level texts",
				"Summarizes main ideas and supporting details",
			},
			Recommendations: []string{
				"Engage with more complex texts and genres",
				"Practice critical analysis and text comparison",
			},
		},
		low: Content{
			Weaknesses: []string{
				"Difficulty recalling basic details from a text",
				"Cannot yet answer simple questions about what was read",
			},
			Recommendations: []string{
				"Read aloud with frequent stops for simple recall questions",
				"Use picture supports and story retelling",
				"Teach story elements (characters, setting, events)",
			},
		},
		midLow: Content{
			Strengths: []string{
				"Recalls some literal details from short texts",
			},
			Weaknesses: []string{
				"Difficulty identifying the main idea",
				"Limited ability to make inferences",
			},
			Recommendations: []string{
				"Use graphic organizers for main idea and details",
				"Model think-aloud strategies for making inferences",
			},
		},
		midHigh: Content{
			Strengths: []string{
				"Answers literal questions accurately",
				"Identifies the main idea of simple texts",
			},
			Weaknesses: []string{
				"Inferential and evaluative questions remain challenging",
			},
			Recommendations: []string{
				"Practice inference with text evidence",
				"Discuss author's purpose and text structure",
			},
		},
	},
}

// defaultMastery applies to categories outside the fixed set
var defaultMastery = Content{
	Strengths: []string{
		"Demonstrates mastery of the assessed skills",
	},
	Recommendations: []string{
		"Continue with grade-level enrichment activities",
	},
}

// genericContent is used for every non-mastery band of an unrecognized category
var genericContent = Content{
	Weaknesses: []string{
		"Specific areas of difficulty not identified",
	},
	Recommendations: []string{
		"Conduct a targeted diagnostic assessment to identify skill gaps",
		"Provide differentiated instruction based on observed needs",
	},
}
