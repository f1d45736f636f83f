package extractor

// DefaultInstruction is sent with the label image
const DefaultInstruction = `Extract the nutritional information from the attached food product label.

1. Product type: Solid, Liquid, Semi-solid (e.g. yogurt, pudding) or Other.
2. Nutritional information per 100g or 100ml. Convert to per 100g/100ml when the label uses another basis:
   - energy_kcal (kcal) and energy_kj (kJ)
   - carbohydrates_g, sugars_g, added_sugars_g (if mentioned)
   - total_fat_g, saturated_fat_g, trans_fat_g (if mentioned)
   - sodium_mg (mg)
   - protein_g
   - fiber_g (dietary fibre)
   - any other nutrient printed, in other_nutrients, e.g. calcium_mg
3. Product name, brand, serving size and package size / net weight.

Set is_nutrition_label to false when the image is not a food label with a nutrition table.
Mark any value that is not visible as "Not Available". Never guess a value.

Answer with a single JSON object in this shape:
{
  "is_nutrition_label": true,
  "product_name": "Product Name",
  "brand": "Brand Name",
  "product_type": "Solid",
  "package_size": "500g",
  "serving_size": "30g",
  "nutritional_info_per_100g": {
    "energy_kcal": 450,
    "energy_kj": 1884,
    "carbohydrates_g": 60,
    "sugars_g": 25,
    "added_sugars_g": 20,
    "total_fat_g": 18,
    "saturated_fat_g": 8,
    "trans_fat_g": 0,
    "sodium_mg": 200,
    "protein_g": 6,
    "fiber_g": 2,
    "other_nutrients": {"calcium_mg": 100}
  }
}`

var background = []string{
	"- You are an expert food product label analyzer with OCR capabilities.",
	"- You read nutrition tables precisely and never invent values.",
}
