package service

// 生成器输出的 JSON Schema，既发送给模型约束输出，也用于校验返回结果

type jsonObject = map[string]interface{}

func nonEmptyString() jsonObject { return jsonObject{"type": "string", "minLength": 1} }

func stringEnum(values ...string) jsonObject {
	vals := make([]interface{}, len(values))
	for i, v := range values {
		vals[i] = v
	}
	return jsonObject{"type": "string", "enum": vals}
}

func objectSchema(required []string, props jsonObject) jsonObject {
	req := make([]interface{}, len(required))
	for i, r := range required {
		req[i] = r
	}
	return jsonObject{"type": "object", "required": req, "properties": props}
}

func arraySchema(item jsonObject, minItems int) jsonObject {
	return jsonObject{"type": "array", "items": item, "minItems": minItems}
}

func textItemSchema() jsonObject {
	return objectSchema([]string{"type", "content"}, jsonObject{
		"type":    stringEnum("text"),
		"title":   jsonObject{"type": "string"},
		"content": nonEmptyString(),
	})
}

func mcqItemSchema() jsonObject {
	return objectSchema([]string{"type", "quizType", "question", "options", "correctAnswer"}, jsonObject{
		"type":     stringEnum("quiz"),
		"quizType": stringEnum("MCQ"),
		"question": nonEmptyString(),
		"options": objectSchema([]string{"A", "B", "C", "D"}, jsonObject{
			"A": nonEmptyString(), "B": nonEmptyString(), "C": nonEmptyString(), "D": nonEmptyString(),
		}),
		"correctAnswer": stringEnum("A", "B", "C", "D"),
		"explanation":   jsonObject{"type": "string"},
	})
}

func tfItemSchema() jsonObject {
	return objectSchema([]string{"type", "quizType", "question", "correctAnswer"}, jsonObject{
		"type":          stringEnum("quiz"),
		"quizType":      stringEnum("TF"),
		"question":      nonEmptyString(),
		"correctAnswer": stringEnum("true", "false"),
		"explanation":   jsonObject{"type": "string"},
	})
}

func pollItemSchema(pollType string, options int) jsonObject {
	opts := arraySchema(nonEmptyString(), options)
	opts["maxItems"] = options
	return objectSchema([]string{"type", "pollType", "question", "options"}, jsonObject{
		"type":     stringEnum("poll"),
		"pollType": stringEnum(pollType),
		"question": nonEmptyString(),
		"options":  opts,
	})
}

func oneOfSchema(variants ...jsonObject) jsonObject {
	list := make([]interface{}, len(variants))
	for i, v := range variants {
		list[i] = v
	}
	return jsonObject{"oneOf": list}
}

func lessonSchema() jsonObject {
	return objectSchema([]string{"title", "description", "items"}, jsonObject{
		"title":       nonEmptyString(),
		"description": jsonObject{"type": "string"},
		"items": arraySchema(oneOfSchema(
			textItemSchema(),
			mcqItemSchema(),
			tfItemSchema(),
			pollItemSchema("POLL_2", 2),
			pollItemSchema("POLL_4", 4),
		), 1),
	})
}

func quizSchema() jsonObject {
	return objectSchema([]string{"title", "questions"}, jsonObject{
		"title":     jsonObject{"type": "string"},
		"questions": arraySchema(oneOfSchema(mcqItemSchema(), tfItemSchema()), 1),
	})
}

func pollSchema() jsonObject {
	return objectSchema([]string{"title", "polls"}, jsonObject{
		"title": jsonObject{"type": "string"},
		"polls": arraySchema(oneOfSchema(pollItemSchema("POLL_2", 2), pollItemSchema("POLL_4", 4)), 1),
	})
}

func summarySchema() jsonObject {
	return objectSchema([]string{"title", "summary", "sections"}, jsonObject{
		"title":   jsonObject{"type": "string"},
		"summary": nonEmptyString(),
		"sections": arraySchema(objectSchema([]string{"heading", "content"}, jsonObject{
			"heading": nonEmptyString(),
			"content": nonEmptyString(),
		}), 0),
	})
}

func keyPointsSchema() jsonObject {
	return objectSchema([]string{"title", "keyPoints"}, jsonObject{
		"title": jsonObject{"type": "string"},
		"keyPoints": arraySchema(objectSchema([]string{"point", "explanation"}, jsonObject{
			"point":       nonEmptyString(),
			"explanation": jsonObject{"type": "string"},
		}), 1),
	})
}

func flashcardSchema() jsonObject {
	return objectSchema([]string{"title", "cards"}, jsonObject{
		"title": jsonObject{"type": "string"},
		"cards": arraySchema(objectSchema([]string{"front", "back"}, jsonObject{
			"front": nonEmptyString(),
			"back":  nonEmptyString(),
		}), 1),
	})
}
