package assistant

const scanPrompt = `אתה מומחה לחילוץ נתונים מתעודות משלוח.
נתון לך תמונה של תעודת משלוח (חשבונית/הזמנה).
חלץ את הנתונים הבאים בפורמט JSON בלבד, ללא טקסט נוסף:
{
  "supplier_name": "שם הספק כפי שמופיע בתעודה",
  "date": "YYYY-MM-DD (תאריך התעודה)",
  "products": [
    { "product_name": "שם המוצר", "quantity": מספר, "unit": "יחידה (ק\"ג, יח', קרטון וכו')" }
  ]
}

אם לא ניתן לזהות ערך – השתמש ב-null.
חשוב: החזר רק JSON תקף, ללא markdown, ללא הסברים.`

const commentaryPrompt = `אתה יועץ מלאי. קיבלת נתונים על מוצר. החזר JSON בלבד, בלי markdown:
{
  "risk": "נמוך" | "בינוני" | "גבוה",
  "trend": "עולה" | "יורד" | "יציב",
  "explanation": "הסבר קצר בעברית (משפט אחד)",
  "recommendation": "המלצה לקניין (משפט אחד)"
}
אם אין היסטוריה מספקת – risk: "בינוני", trend: "יציב", explanation: "אין היסטוריה מספקת לחיזוי".`

const emailPrompt = `אתה עוזר רכש. כתוב מייל הזמנה קצר ומנומס בעברית לספק על פי הפריטים הבאים.
החזר JSON בלבד, בלי markdown:
{
  "subject": "נושא המייל",
  "body": "גוף המייל, כולל רשימת הפריטים והכמויות"
}`
